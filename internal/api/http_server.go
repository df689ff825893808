package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"

	"flight-position-gateway/internal/fetcher"
	"flight-position-gateway/internal/metrics"
	"flight-position-gateway/internal/model"
	"flight-position-gateway/internal/processor"
	"flight-position-gateway/pkg/logger"
	"flight-position-gateway/pkg/utils"
)

// UpstreamTimeHeader carries the OpenSky report time on derived responses.
const UpstreamTimeHeader = "X-Upstream-Time"

// StateSource fetches the bounding box state vectors for one request.
type StateSource interface {
	FetchRaw(ctx context.Context) ([]byte, error)
	FetchReport(ctx context.Context) (*model.PositionReport, error)
}

// Server represents the HTTP API server
type Server struct {
	logger      *logger.Logger
	metrics     *metrics.Metrics
	source      StateSource
	corsOrigins []string
}

// NewServer creates a new HTTP server instance
func NewServer(log *logger.Logger, m *metrics.Metrics, source StateSource, corsOrigins []string) *Server {
	return &Server{
		logger:      log,
		metrics:     m,
		source:      source,
		corsOrigins: corsOrigins,
	}
}

// Routes configures all HTTP routes
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	if len(s.corsOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.corsOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			ExposedHeaders: []string{UpstreamTimeHeader},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Get("/", s.handleRaw)
	r.Get("/testing123", s.handleRaw)
	r.Get("/positions", s.handlePositions)
	r.Get("/countries", s.handleCountries)

	return r
}

// requestLogger logs and measures every request once the handler returns.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)

		s.metrics.ObserveHTTP(route, status, elapsed)
		s.logger.Info().
			Str("request_id", chimiddleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", elapsed).
			Msg("HTTP request")
	})
}

// handleHealth returns the health status of the service
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": utils.GetCurrentUnixTimestamp(),
		"uptime":    s.metrics.GetUptime().String(),
	}

	s.respondJSON(w, r, http.StatusOK, response)
}

// handleRaw passes the upstream body through untouched
func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	body, err := s.source.FetchRaw(r.Context())
	if err != nil {
		s.respondUpstreamError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		s.requestLog(r).Error().Err(err).Msg("Failed to write raw response")
	}
}

// handlePositions returns the positions matching the oc/tracklo/trackhi filter
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	filter, err := processor.ParseFilter(r.URL.Query())
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, err)
		return
	}

	report, err := s.source.FetchReport(r.Context())
	if err != nil {
		s.respondUpstreamError(w, r, err)
		return
	}

	setUpstreamTime(w, report)
	s.respondJSON(w, r, http.StatusOK, filter.Apply(report.Positions()))
}

// handleCountries returns the distinct origin countries, sorted
func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "text" {
		s.respondError(w, r, http.StatusBadRequest, errors.New("format must be json or text"))
		return
	}

	report, err := s.source.FetchReport(r.Context())
	if err != nil {
		s.respondUpstreamError(w, r, err)
		return
	}

	countries := processor.DistinctSortedCountries(report.Positions())
	setUpstreamTime(w, report)

	if format == "text" {
		var b strings.Builder
		for _, c := range countries {
			b.WriteString(c)
			b.WriteByte('\n')
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(b.String())); err != nil {
			s.requestLog(r).Error().Err(err).Msg("Failed to write countries response")
		}
		return
	}

	s.respondJSON(w, r, http.StatusOK, countries)
}

func setUpstreamTime(w http.ResponseWriter, report *model.PositionReport) {
	if report.Time != nil {
		w.Header().Set(UpstreamTimeHeader, utils.FormatTimestamp(*report.Time))
	}
}

// respondUpstreamError maps a failed fetch to 504 for deadlines and 502 otherwise.
func (s *Server) respondUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusBadGateway
	if fetcher.IsTimeout(err) {
		status = http.StatusGatewayTimeout
	}
	s.respondError(w, r, status, err)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.requestLog(r).Warn().Err(err).Int("status", status).Msg("Request failed")
	s.respondJSON(w, r, status, map[string]string{"error": err.Error()})
}

// respondJSON encodes v before writing the status so an encode failure
// becomes a 500 instead of a truncated success.
func (s *Server) respondJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.requestLog(r).Error().Err(err).Msg("Failed to encode response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		s.requestLog(r).Error().Err(err).Msg("Failed to write response")
	}
}

func (s *Server) requestLog(r *http.Request) *logger.Logger {
	return s.logger.With("request_id", chimiddleware.GetReqID(r.Context()))
}
