package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/anagh/homeledger/internal/config"
	"github.com/anagh/homeledger/internal/httpapi"
	"github.com/anagh/homeledger/internal/middleware"
	"github.com/anagh/homeledger/internal/service"
	"github.com/anagh/homeledger/internal/storage/sqlite"
	"github.com/anagh/homeledger/pkg/logging"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.SQLiteDBPath)

	server := httpapi.New(
		service.NewHouseholdService(store),
		service.NewBudgetService(store),
		service.NewSettlementService(store),
	)

	handler := middleware.Logging(middleware.CORS(server.Routes()))

	// h2c allows HTTP/2 without TLS for clients that want it.
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", cfg.Port)
	slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
