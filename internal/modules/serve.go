package modules

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/quocvuong92/monaca-cli/internal/constants"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
	"github.com/quocvuong92/monaca-cli/internal/logging"
)

// Serve runs the local preview server.
type Serve struct {
	env *Env

	// onListen is called with the bound address once the server accepts
	// connections.
	onListen func(addr string)
}

func (m *Serve) Run(ctx context.Context, name string, inv dispatch.Invocation) (*dispatch.Result, error) {
	if name != "preview" {
		return nil, errUnknownTask(name)
	}
	return nil, m.preview(ctx, inv)
}

// preview serves www/ until ctx is cancelled.
func (m *Serve) preview(ctx context.Context, inv dispatch.Invocation) error {
	env := m.env
	root := env.path("www")
	if fi, err := os.Stat(root); err != nil || !fi.IsDir() {
		return fmt.Errorf("www directory not found in %s; run this command inside a Monaca project", absDir(env.Dir))
	}

	port := inv.Options.Int("port", constants.DefaultPreviewPort)
	ln, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
	if err != nil {
		return fmt.Errorf("failed to start preview server on port %d: %w", port, err)
	}

	srv := &http.Server{
		Handler:           logRequests(http.FileServer(http.Dir(root))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	addr := ln.Addr().String()
	url := "http://" + addr
	env.Console.Success("Serving " + root + " at " + url)
	env.Console.Println("Press Ctrl+C to stop.")
	if !inv.Options.Bool("no-open") {
		env.openBrowser(url)
	}
	if m.onListen != nil {
		m.onListen(addr)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("preview server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		env.Console.Println("Stopping preview server.")
		return srv.Shutdown(shutdownCtx)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.Debug("preview request", logging.Fields{"method": r.Method, "path": r.URL.Path})
		next.ServeHTTP(w, r)
	})
}
