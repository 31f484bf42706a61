package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/hongminglow/credit-approval/internal/auth"
	"github.com/hongminglow/credit-approval/internal/config"
)

// token prints a bearer token for calling the API when JWT_SECRET is set.
func main() {
	subject := flag.String("sub", "operator", "token subject")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; relying on existing environment")
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if !cfg.AuthEnabled() {
		slog.Error("JWT_SECRET is not set; the API accepts unauthenticated requests")
		os.Exit(1)
	}

	token, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL).Generate(*subject)
	if err != nil {
		slog.Error("sign token", "error", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
