package handlers

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/hongminglow/credit-approval/internal/service"
)

func requireInt(field string, n json.Number) (int64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, &service.ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &service.ValidationError{Field: field, Reason: "must be an integer"}
	}
	return v, nil
}

func requireFloat(field string, n json.Number) (float64, error) {
	s := strings.TrimSpace(n.String())
	if s == "" {
		return 0, &service.ValidationError{Field: field, Reason: "is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &service.ValidationError{Field: field, Reason: "must be a number"}
	}
	return v, nil
}

func pathID(field, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, &service.ValidationError{Field: field, Reason: "must be a positive integer"}
	}
	return v, nil
}
