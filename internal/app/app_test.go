package app

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/crownfall/farm-coordinator/internal/config"
)

func TestNewAssignsDependencies(t *testing.T) {
	cfg := &config.Config{ShutdownTimeout: 10 * time.Second}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	server := &http.Server{Addr: ":8000", ReadHeaderTimeout: time.Second}

	a := New(cfg, logger, server, nil)
	if a.Config != cfg || a.Logger != logger || a.Server != server {
		t.Fatal("expected app dependencies to be assigned")
	}
}
