package listener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"
)

const shutdownTimeout = 5 * time.Second

type WebsocketListener struct {
	port uint16
	path string
	cm   *ConnectionManager
}

func NewWebsocketListener(port uint16, path string, cm *ConnectionManager) *WebsocketListener {
	if path == "" {
		path = "/"
	}
	return &WebsocketListener{
		port: port,
		path: path,
		cm:   cm,
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("port %d is already in use (another server running?)", l.port)
		}
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	return l.serve(ctx, listener)
}

func (l *WebsocketListener) serve(ctx context.Context, listener net.Listener) error {
	// Connections outlive the request context once hijacked, so they get their own.
	connCtx, cancelConns := context.WithCancel(context.WithoutCancel(ctx))
	var conns connTracker

	mux := http.NewServeMux()
	mux.HandleFunc(l.path, func(w http.ResponseWriter, r *http.Request) {
		if !conns.add() {
			http.Error(w, "server shutting down", http.StatusServiceUnavailable)
			return
		}
		defer conns.done()
		l.cm.Upgrade(connCtx, w, r)
	})

	svr := &http.Server{Handler: mux}

	// done signals that serve is returning (either success or failure)
	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			if err := svr.Shutdown(shutdownCtx); err != nil {
				slog.WarnContext(ctx, "shutting down websocket listener", "error", err)
			}
		case <-done:
		}
	}()

	slog.InfoContext(ctx, "listening for websockets", "addr", listener.Addr().String(), "path", l.path)

	err := svr.Serve(listener)

	cancelConns()
	conns.closeAndWait()

	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving websockets on port %d: %w", l.port, err)
	}
	return nil
}

// connTracker counts in-flight connection handlers. Once closed it refuses new ones, so a
// handler that Shutdown did not see can never race the final wait.
type connTracker struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

func (c *connTracker) add() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.wg.Add(1)
	return true
}

func (c *connTracker) done() {
	c.wg.Done()
}

func (c *connTracker) closeAndWait() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.wg.Wait()
}
