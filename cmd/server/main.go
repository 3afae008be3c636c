package main

import (
    "context"
    "errors"
    "fmt"
    "io"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/rs/zerolog"
    "golang.org/x/sync/errgroup"

    "github.com/jaminalder/negamax-tic-tac-toe/internal/app"
    "github.com/jaminalder/negamax-tic-tac-toe/internal/config"
    "github.com/jaminalder/negamax-tic-tac-toe/internal/web"
)

func main() {
    if err := run(os.Args[1:]); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}

func run(args []string) error {
    cfg, err := config.Load(args, os.Getenv)
    if err != nil {
        return err
    }
    log := newLogger(cfg, os.Stderr)

    svc := app.NewService()
    svc.SetLogger(log.With().Str("component", "app").Logger())
    srv := &http.Server{
        Addr:              cfg.Addr,
        Handler:           web.NewServerWithOptions(svc, web.Options{Heartbeat: cfg.Heartbeat}),
        ReadHeaderTimeout: 10 * time.Second,
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    g, ctx := errgroup.WithContext(ctx)
    g.Go(func() error {
        log.Info().Str("addr", cfg.Addr).Msg("server-listening")
        if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
            return err
        }
        return nil
    })
    g.Go(func() error {
        <-ctx.Done()
        log.Info().Msg("server-shutdown")
        shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
        defer cancel()
        return srv.Shutdown(shutdownCtx)
    })
    return g.Wait()
}

func newLogger(cfg config.Config, w io.Writer) zerolog.Logger {
    if !cfg.LogJSON {
        w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
    }
    return zerolog.New(w).Level(cfg.LogLevel).With().Timestamp().Logger()
}
