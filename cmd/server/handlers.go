package main

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/thebartekbanach/tinyrelay/pkg/config"
	"github.com/thebartekbanach/tinyrelay/pkg/relay"
)

const (
	requestIDHeader     = "X-Request-Id"
	apiKeyHeader        = "X-API-Key"
	relayAllowedMethods = "POST, OPTIONS"
	proxyAllowedMethods = "GET, HEAD, POST, OPTIONS"
	debugAllowedMethods = "GET, POST, OPTIONS"
	allowedHeaders      = "Content-Type, X-API-Key, Authorization"
	exposedHeaders      = "Image-Width, Image-Height, Content-Length, X-Request-Id"
)

func newRouter(cfg *config.Config, logger zerolog.Logger, relayService relay.RelayService) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(hlog.RemoteAddrHandler("remote_addr"))
	r.Use(assignRequestID)
	r.Use(hlog.AccessHandler(logRequest))
	r.Use(corsHeaders)
	r.Use(recoverPanics(cfg.DebugErrors))
	if cfg.SentryDSN != "" {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle)
	}
	r.Use(preflight)

	r.HandleFunc("/debug", handleDebug(relayService))
	r.HandleFunc("/*", handleRelay(cfg.MaxBodyBytes, relayService))

	return r
}

func handleRelay(maxBodyBytes int64, relayService relay.RelayService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writer := &relayResponseWriter{w}

		if target := r.URL.Query().Get("url"); target != "" {
			setCORSHeaders(w.Header(), proxyAllowedMethods)
			relayService.Passthrough(r.Context(), target, writer)
			return
		}

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", relayAllowedMethods)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": relay.MessageMethodNotAllowed})
			return
		}

		relayService.Handle(r.Context(), relay.InboundRequest{
			Selector:    r.Header.Get(apiKeyHeader),
			ContentType: r.Header.Get("Content-Type"),
			Body:        http.MaxBytesReader(w, r.Body, maxBodyBytes),
		}, writer)
	}
}

func handleDebug(relayService relay.RelayService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", debugAllowedMethods)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "Relay debug info",
			"slots":     relayService.KeyStatus(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func assignRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set(requestIDHeader, requestID)

		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", requestID)
		})

		next.ServeHTTP(w, r)
	})
}

func logRequest(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Bool("proxy", r.URL.Query().Get("url") != "").
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request handled")
}

func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		setCORSHeaders(w.Header(), relayAllowedMethods)
		next.ServeHTTP(w, r)
	})
}

func setCORSHeaders(header http.Header, methods string) {
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Methods", methods)
	header.Set("Access-Control-Allow-Headers", allowedHeaders)
	header.Set("Access-Control-Expose-Headers", exposedHeaders)
}

func preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func recoverPanics(includeStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}

				stack := debug.Stack()
				hlog.FromRequest(r).Error().
					Interface("panic", recovered).
					Bytes("stack", stack).
					Msg("recovered from panic")

				if hub := sentry.GetHubFromContext(r.Context()); hub == nil {
					sentry.CurrentHub().Recover(recovered)
				}

				body := relay.NewUnexpectedErrorResponse(fmt.Sprint(recovered), "")
				if includeStack {
					body.Stack = string(stack)
				}

				writeJSON(w, http.StatusInternalServerError, body)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
