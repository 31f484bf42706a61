package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/credit-approval/internal/credit"
	"github.com/hongminglow/credit-approval/internal/http/respond"
	"github.com/hongminglow/credit-approval/internal/models"
	"github.com/hongminglow/credit-approval/internal/models/dto"
	"github.com/hongminglow/credit-approval/internal/service"
)

// LendingService is the subset of service.Lending the handlers call.
type LendingService interface {
	RegisterCustomer(ctx context.Context, in service.RegisterInput) (models.Customer, error)
	CheckEligibility(ctx context.Context, app credit.Application) (credit.Decision, error)
	CreateLoan(ctx context.Context, app credit.Application) (credit.Decision, *models.Loan, error)
	GetLoan(ctx context.Context, loanID int64) (service.LoanDetail, error)
	ListActiveLoans(ctx context.Context, customerID int64) ([]service.ActiveLoan, error)
}

// LendingHandler owns the customer and loan endpoints.
type LendingHandler struct {
	svc    LendingService
	logger *slog.Logger
}

// NewLendingHandler constructs the handler.
func NewLendingHandler(svc LendingService, logger *slog.Logger) *LendingHandler {
	return &LendingHandler{svc: svc, logger: logger}
}

// Register attaches lending routes to the mux.
func (h *LendingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/check-eligibility", h.handleCheckEligibility)
	mux.HandleFunc("/create-loan", h.handleCreateLoan)
	mux.HandleFunc("/view-loan/{loan_id}", h.handleViewLoan)
	mux.HandleFunc("/view-loans/{customer_id}", h.handleViewLoans)
}

func (h *LendingHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := registerInput(req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.svc.RegisterCustomer(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, "customer registered", dto.RegisterResponse{
		CustomerID:    created.ID,
		Name:          created.FullName(),
		Age:           created.Age,
		MonthlyIncome: created.MonthlySalary,
		ApprovedLimit: created.ApprovedLimit,
		PhoneNumber:   created.PhoneNumber,
	})
}

func (h *LendingHandler) handleCheckEligibility(w http.ResponseWriter, r *http.Request) {
	app, ok := h.decodeApplication(w, r)
	if !ok {
		return
	}
	d, err := h.svc.CheckEligibility(r.Context(), app)
	if err == nil {
		err = priced(d)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := dto.EligibilityResponse{
		CustomerID:         app.CustomerID,
		Approval:           d.Approved,
		CreditScore:        d.CreditScore,
		InterestRate:       app.InterestRate,
		Tenure:             app.Tenure,
		MonthlyInstallment: money(d.MonthlyInstallment),
		Message:            d.Reason,
	}
	if d.CorrectedRate != nil {
		rate := *d.CorrectedRate
		resp.CorrectedInterestRate = &rate
	}
	respond.JSON(w, http.StatusOK, decisionMessage(d), resp)
}

func (h *LendingHandler) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	app, ok := h.decodeApplication(w, r)
	if !ok {
		return
	}
	d, loan, err := h.svc.CreateLoan(r.Context(), app)
	if err == nil {
		err = priced(d)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	resp := dto.CreateLoanResponse{
		CustomerID:         app.CustomerID,
		LoanApproved:       d.Approved,
		Message:            decisionMessage(d),
		MonthlyInstallment: money(d.MonthlyInstallment),
	}
	status := http.StatusOK
	if loan != nil {
		id := loan.ID
		resp.LoanID = &id
		status = http.StatusCreated
	}
	respond.JSON(w, status, resp.Message, resp)
}

func (h *LendingHandler) handleViewLoan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	loanID, err := pathID("loan_id", r.PathValue("loan_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	detail, err := h.svc.GetLoan(r.Context(), loanID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	l, c := detail.Loan, detail.Customer
	respond.JSON(w, http.StatusOK, "ok", dto.LoanDetailResponse{
		LoanID: l.ID,
		Customer: dto.CustomerSummary{
			ID:          c.ID,
			FirstName:   c.FirstName,
			LastName:    c.LastName,
			PhoneNumber: c.PhoneNumber,
			Age:         c.Age,
		},
		LoanAmount:         l.Amount,
		InterestRate:       l.InterestRate,
		MonthlyInstallment: money(l.MonthlyInstallment),
		Tenure:             l.Tenure,
	})
}

func (h *LendingHandler) handleViewLoans(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	customerID, err := pathID("customer_id", r.PathValue("customer_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	active, err := h.svc.ListActiveLoans(r.Context(), customerID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]dto.LoanSummary, 0, len(active))
	for _, a := range active {
		out = append(out, dto.LoanSummary{
			LoanID:             a.Loan.ID,
			LoanAmount:         a.Loan.Amount,
			InterestRate:       a.Loan.InterestRate,
			MonthlyInstallment: money(a.Loan.MonthlyInstallment),
			RepaymentsLeft:     a.MonthsRemaining,
		})
	}
	respond.JSON(w, http.StatusOK, "ok", out)
}

// maxBodyBytes bounds request bodies; every payload is a handful of fields.
const maxBodyBytes = 64 << 10

// decodeJSON reads a size-limited JSON body into dst, writing the error
// response itself when it fails.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		respond.Error(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
	return false
}

// priced rejects a decision whose installment cannot be rendered.
func priced(d credit.Decision) error {
	if !finite(d.MonthlyInstallment) {
		return fmt.Errorf("%w: installment is not a finite amount", service.ErrInvalidLoanParameters)
	}
	return nil
}

func (h *LendingHandler) decodeApplication(w http.ResponseWriter, r *http.Request) (credit.Application, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return credit.Application{}, false
	}
	var req dto.LoanRequest
	if !decodeJSON(w, r, &req) {
		return credit.Application{}, false
	}
	app, err := loanApplication(req)
	if err != nil {
		h.fail(w, r, err)
		return credit.Application{}, false
	}
	return app, true
}

// fail maps service errors onto HTTP statuses. Anything unrecognized is
// logged and reported as a generic failure.
func (h *LendingHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		respond.FieldError(w, vErr.Field, vErr.Error())
	case errors.Is(err, service.ErrInvalidLoanParameters):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrDuplicatePhoneNumber):
		respond.Error(w, http.StatusConflict, "phone number already registered")
	case errors.Is(err, service.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "not found")
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func decisionMessage(d credit.Decision) string {
	if d.Approved {
		return "loan approved"
	}
	return d.Reason
}

func registerInput(req dto.RegisterRequest) (service.RegisterInput, error) {
	salaryField, salary := "monthly_income", req.MonthlyIncome
	if strings.TrimSpace(salary.String()) == "" {
		salaryField, salary = "monthly_salary", req.MonthlySalary
	}
	in := service.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	age, err := requireInt("age", req.Age)
	if err != nil {
		return in, err
	}
	in.Age = int(age)
	if in.PhoneNumber, err = requireInt("phone_number", req.PhoneNumber); err != nil {
		return in, err
	}
	if in.MonthlySalary, err = requireInt(salaryField, salary); err != nil {
		return in, err
	}
	return in, nil
}

func loanApplication(req dto.LoanRequest) (credit.Application, error) {
	var app credit.Application
	var err error
	if app.CustomerID, err = requireInt("customer_id", req.CustomerID); err != nil {
		return app, err
	}
	if app.Amount, err = requireFloat("loan_amount", req.LoanAmount); err != nil {
		return app, err
	}
	if app.InterestRate, err = requireFloat("interest_rate", req.InterestRate); err != nil {
		return app, err
	}
	tenure, err := requireInt("tenure", req.Tenure)
	if err != nil {
		return app, err
	}
	app.Tenure = int(tenure)
	return app, nil
}
