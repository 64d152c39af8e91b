// Package server assembles and runs the game service: storage, narrator,
// turn engine, and the HTTP surface around them.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fableforge/fableforge/internal/platform/timeouts"
	"github.com/fableforge/fableforge/internal/services/game/api/rest"
	"github.com/fableforge/fableforge/internal/services/game/engine"
	"github.com/fableforge/fableforge/internal/services/game/events"
	"github.com/fableforge/fableforge/internal/services/game/narrator"
	"github.com/fableforge/fableforge/internal/services/game/storage/sqlite"
)

// Options configures a game server instance.
type Options struct {
	// Addr is the listen address; when empty Port is used.
	Addr string
	Port int
	// DBPath locates the SQLite database file.
	DBPath string
	// Narrator is the narration collaborator, chosen by the command layer.
	Narrator narrator.Client
	// Events may be nil; turn notifications are then dropped.
	Events *events.Publisher
}

// Server hosts the game service HTTP API.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      *sqlite.Store
	events     *events.Publisher
}

// New builds a configured server listening on the requested address.
func New(opts Options) (*Server, error) {
	if opts.Narrator == nil {
		return nil, fmt.Errorf("narrator client is required")
	}

	addr := opts.Addr
	if addr == "" {
		addr = fmt.Sprintf(":%d", opts.Port)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	store, err := sqlite.Open(opts.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	eng, err := engine.New(engine.Config{
		Store:    store,
		Narrator: opts.Narrator,
		Events:   opts.Events,
	})
	if err != nil {
		_ = listener.Close()
		_ = store.Close()
		return nil, err
	}

	httpServer := &http.Server{
		Handler:           otelhttp.NewHandler(rest.NewHandler(eng).Routes(), "game.api"),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	return &Server{
		listener:   listener,
		httpServer: httpServer,
		store:      store,
		events:     opts.Events,
	}, nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run builds and serves a game server until the context ends.
func Run(ctx context.Context, opts Options) error {
	server, err := New(opts)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve blocks until the server stops or the context ends, then shuts down
// gracefully and releases the store and event connections.
func (s *Server) Serve(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.close()

	log.Printf("game server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	handleErr := func(err error) error {
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}

	select {
	case err := <-serveErr:
		return handleErr(err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return handleErr(<-serveErr)
	}
}

func (s *Server) close() {
	if err := s.store.Close(); err != nil {
		log.Printf("close store: %v", err)
	}
	s.events.Close()
}
