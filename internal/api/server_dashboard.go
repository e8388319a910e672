package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/glassbox/internal/dashboard"
)

// DashboardService is the subscriber state the dashboard API exposes.
// *dashboard.Store implements it.
type DashboardService interface {
	Snapshot() dashboard.Snapshot
	ClearLogs()
	Connection() dashboard.ConnectionState
}

// NewDashboardServer builds the subscriber's read API over its state
// container.
func NewDashboardServer(svc DashboardService) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors)
	router.MethodNotAllowed(methodNotAllowed)

	cfg := huma.DefaultConfig("GlassBox Dashboard", "1.0.0")
	cfg.CreateHooks = nil
	api := humachi.New(router, cfg)

	registerDashboardHandlers(api, svc)
	return router
}

func registerDashboardHandlers(api huma.API, svc DashboardService) {
	type snapshotOutput struct {
		Body dashboard.Snapshot
	}
	huma.Register(api, huma.Operation{OperationID: "get-dashboard", Method: http.MethodGet, Path: "/api/v1/dashboard", Summary: "Current dashboard state", Tags: []string{"Dashboard"}},
		func(ctx context.Context, input *struct{}) (*snapshotOutput, error) {
			return &snapshotOutput{Body: svc.Snapshot()}, nil
		})

	type clearOutput struct {
		Body struct {
			Success bool `json:"success"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "clear-dashboard-logs", Method: http.MethodDelete, Path: "/api/v1/dashboard/logs", Summary: "Clear the decision log", Tags: []string{"Dashboard"}},
		func(ctx context.Context, input *struct{}) (*clearOutput, error) {
			svc.ClearLogs()
			out := &clearOutput{}
			out.Body.Success = true
			return out, nil
		})

	type healthOutput struct {
		Body struct {
			Status     string                    `json:"status"`
			Connection dashboard.ConnectionState `json:"connection"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "dashboard-health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			out.Body.Connection = svc.Connection()
			return out, nil
		})
}
