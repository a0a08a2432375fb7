package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
)

const maxRequestBodyBytes = 1 << 20

type Config struct {
	Addr            string        `split_words:"true" default:":8080"`
	ReadTimeout     time.Duration `split_words:"true" default:"15s"`
	WriteTimeout    time.Duration `split_words:"true" default:"5m"`
	ShutdownTimeout time.Duration `split_words:"true" default:"30s"`
}

// Coordinator is what the HTTP layer needs from the facade.
type Coordinator interface {
	Coordinate(ctx context.Context, req contractx.CoordinationRequest) (contractx.CoordinationResponse, error)
	Session(ctx context.Context, sessionID string) (*statex.CoordinationSession, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHandler(coord Coordinator, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/coordinate", handleCoordinate(coord))
	mux.HandleFunc("GET /v1/sessions/{id}", handleGetSession(coord))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	var h http.Handler = mux
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.RequestIDHandler("request_id", "X-Request-Id")(h)
	h = hlog.NewHandler(logger)(h)
	return h
}

func NewServer(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}

func handleCoordinate(coord Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contractx.CoordinationRequest
		dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeError(w, r, fmt.Errorf("%w: decode request: %v", contractx.ErrValidation, err))
			return
		}

		resp, err := coord.Coordinate(r.Context(), req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleGetSession(coord Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := coord.Session(r.Context(), r.PathValue("id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sess)
	}
}

// StatusFor maps engine errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, contractx.ErrValidation),
		errors.Is(err, statex.ErrUnsupportedPattern),
		errors.Is(err, statex.ErrInvalidSession):
		return http.StatusBadRequest
	case errors.Is(err, statex.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, contractx.ErrNoSuitableAgents),
		errors.Is(err, contractx.ErrNoCoordinator):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contractx.ErrModelInvoke),
		errors.Is(err, contractx.ErrSchemaViolation):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	evt := hlog.FromRequest(r).Warn()
	if status >= http.StatusInternalServerError {
		evt = hlog.FromRequest(r).Error()
	}
	evt.Err(err).Int("status", status).Msg("request failed")

	writeJSON(w, status, errorResponse{Error: PublicMessage(err)})
}

// publicErrors are the sentinels whose text may reach clients, in StatusFor order.
var publicErrors = []error{
	contractx.ErrValidation,
	statex.ErrUnsupportedPattern,
	statex.ErrInvalidSession,
	statex.ErrSessionNotFound,
	contractx.ErrNoSuitableAgents,
	contractx.ErrNoCoordinator,
	contractx.ErrModelInvoke,
	contractx.ErrSchemaViolation,
}

// PublicMessage returns the client-facing text for err: the outermost error
// in its chain that starts with a known sentinel's message. Graph and wrapping
// context above that point stays in the logs.
func PublicMessage(err error) string {
	for _, sentinel := range publicErrors {
		if !errors.Is(err, sentinel) {
			continue
		}
		if e := findPrefixed(err, sentinel.Error()); e != nil {
			return e.Error()
		}
		return sentinel.Error()
	}
	return http.StatusText(http.StatusInternalServerError)
}

func findPrefixed(err error, prefix string) error {
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), prefix) {
		return err
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return findPrefixed(u.Unwrap(), prefix)
	case interface{ Unwrap() []error }:
		for _, inner := range u.Unwrap() {
			if e := findPrefixed(inner, prefix); e != nil {
				return e
			}
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}
