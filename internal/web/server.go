package web

import (
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/rs/zerolog"

    "github.com/jaminalder/negamax-tic-tac-toe/internal/app"
)

// Options tunes the HTTP layer.
type Options struct {
    // Heartbeat is the idle ping interval of SSE and websocket streams.
    Heartbeat time.Duration
}

// DefaultHeartbeat is used when Options.Heartbeat is not set.
const DefaultHeartbeat = 15 * time.Second

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service) http.Handler {
    return NewServerWithOptions(s, Options{})
}

// NewServerWithOptions wires routes with explicit options. It installs the
// board renderer into s so broadcasts carry the board fragment.
func NewServerWithOptions(s *app.Service, opts Options) http.Handler {
    if opts.Heartbeat <= 0 {
        opts.Heartbeat = DefaultHeartbeat
    }
    h := &handlers{svc: s, tpl: loadTemplates(), heartbeat: opts.Heartbeat}
    s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(middleware.RealIP)
    r.Use(requestLogger(s.Logger()))
    r.Use(middleware.Recoverer)

    r.Get("/", h.index)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/join", h.join)
        r.Post("/play", h.play)
        r.Get("/events", h.events)
        r.Get("/ws", h.stream)
    })
    r.Get("/api/solve", h.solve)
    return r
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            next.ServeHTTP(ww, r)
            log.Info().
                Str("req_id", middleware.GetReqID(r.Context())).
                Str("method", r.Method).
                Str("path", r.URL.Path).
                Int("status", ww.Status()).
                Int("bytes", ww.BytesWritten()).
                Dur("took", time.Since(start)).
                Msg("http-request")
        })
    }
}
