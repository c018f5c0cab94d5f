package main

import (
	"log/slog"
	"os"

	"ecommerce-auth/internal/app"
	"ecommerce-auth/internal/logger"
)

func main() {
	// Bootstrap logger until config decides format and level.
	slog.SetDefault(logger.New(os.Stdout, false, "info"))

	application, err := app.New()
	if err != nil {
		slog.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}
