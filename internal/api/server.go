package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/glassbox/internal/relay"
	"github.com/dgnsrekt/glassbox/internal/signal"
)

const serviceName = "Nexus-7 Trade Signals"

// Service is the relay behaviour the HTTP layer needs.
type Service interface {
	Ingest(ctx context.Context, body []byte) (signal.Envelope, error)
	Now() time.Time
	Broker() *relay.Broker
}

// relayError is the {"error": "..."} body producers expect from the
// signals endpoint.
type relayError struct {
	Status  int    `json:"-"`
	Message string `json:"error"`
}

func (e *relayError) Error() string  { return e.Message }
func (e *relayError) GetStatus() int { return e.Status }

type signalsInput struct {
	RawBody []byte
}

type publishOutput struct {
	Body struct {
		Success   bool   `json:"success"`
		Message   string `json:"message"`
		Timestamp string `json:"timestamp"`
	}
}

type healthyOutput struct {
	Body struct {
		Status    string `json:"status"`
		Service   string `json:"service"`
		Timestamp string `json:"timestamp"`
	}
}

// NewServer builds the relay HTTP surface: the signals contract, the two
// stream transports of the broadcast topic and a health check.
func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors)
	router.Use(limitSignalBody)
	router.MethodNotAllowed(methodNotAllowed)

	cfg := huma.DefaultConfig("GlassBox Signal Relay", "1.0.0")
	cfg.DocsPath = ""
	// Producers parse these bodies verbatim; no $schema link field.
	cfg.CreateHooks = nil
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Options("/signals", preflight)
	router.Get("/signals/stream", relay.WebSocketHandler(svc.Broker()))
	router.Get("/signals/events", relay.SSEHandler(svc.Broker()))

	registerSignalHandlers(api, svc)
	registerHealthHandlers(api, svc)

	return router
}

func registerSignalHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "publish-signal", Method: http.MethodPost, Path: "/signals", DefaultStatus: http.StatusOK, Summary: "Publish a signal on the broadcast topic", Tags: []string{"Signals"}},
		func(ctx context.Context, input *signalsInput) (*publishOutput, error) {
			env, err := svc.Ingest(ctx, input.RawBody)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &publishOutput{}
			out.Body.Success = true
			out.Body.Message = "Signal " + string(env.Type) + " broadcasted"
			out.Body.Timestamp = signal.Stamp(svc.Now())
			return out, nil
		})
	// An empty body is a decode failure reported through mapErr, not a
	// framework 400.
	if item := api.OpenAPI().Paths["/signals"]; item != nil && item.Post != nil && item.Post.RequestBody != nil {
		item.Post.RequestBody.Required = false
	}

	huma.Register(api, huma.Operation{OperationID: "signals-health", Method: http.MethodGet, Path: "/signals", Summary: "Relay health check", Tags: []string{"Signals"}},
		func(ctx context.Context, input *struct{}) (*healthyOutput, error) {
			out := &healthyOutput{}
			out.Body.Status = "healthy"
			out.Body.Service = serviceName
			out.Body.Timestamp = signal.Stamp(svc.Now())
			return out, nil
		})
}

func registerHealthHandlers(api huma.API, svc Service) {
	type healthOutput struct {
		Body struct {
			Status      string `json:"status"`
			Subscribers int    `json:"subscribers"`
			Published   int64  `json:"published"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			out.Body.Subscribers = svc.Broker().ClientCount()
			out.Body.Published = svc.Broker().Published()
			return out, nil
		})
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(relayError{Status: status, Message: msg}); err != nil {
		slog.Debug("error response write failed", "error", err)
	}
}

// mapErr keeps the producer-facing contract: every failure to decode or
// accept a signal is a 500 carrying the raw message.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *signal.CodedError
	if errors.As(err, &coded) {
		return &relayError{Status: http.StatusInternalServerError, Message: coded.Message}
	}
	return &relayError{Status: http.StatusInternalServerError, Message: err.Error()}
}
