package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/fableforge/fableforge/internal/services/game/narrator"
)

type staticNarrator struct{}

func (staticNarrator) Chat(context.Context, narrator.Request) (string, error) {
	return `{"narration": "The hall falls silent.", "options": []}`, nil
}

func testOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Addr:     "127.0.0.1:0",
		DBPath:   filepath.Join(t.TempDir(), "game.db"),
		Narrator: staticNarrator{},
	}
}

// TestServeStopsOnContext verifies the server serves requests and stops on cancel.
func TestServeStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv, err := New(testOptions(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ctx)
	}()

	url := fmt.Sprintf("http://%s/v1/games", srv.Addr())
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from %s, got %d", url, resp.StatusCode)
	}

	cancel()

	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop in time")
	}
}

// TestNewRequiresNarrator verifies construction fails without a narrator client.
func TestNewRequiresNarrator(t *testing.T) {
	opts := testOptions(t)
	opts.Narrator = nil
	if _, err := New(opts); err == nil {
		t.Fatal("expected error without narrator")
	}
}

// TestRunAddrInUse verifies Run reports an error when the address is occupied.
func TestRunAddrInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	opts := testOptions(t)
	opts.Addr = listener.Addr().String()
	if err := Run(context.Background(), opts); err == nil {
		t.Fatal("expected error when address is already in use")
	}
}

// TestServeReturnsErrorOnClosedListener verifies Serve reports listener errors.
func TestServeReturnsErrorOnClosedListener(t *testing.T) {
	srv, err := New(testOptions(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if err := srv.listener.Close(); err != nil {
		t.Fatalf("close listener: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := srv.Serve(ctx); err == nil {
		t.Fatal("expected serve error after closing listener")
	}
}
