// Package debug provides instrumentation and profiling tools for flamereport.
package debug

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/sirupsen/logrus"
)

// StartPprofServer serves net/http/pprof on addr for the lifetime of a run.
// It returns a stop function that shuts the server down.
func StartPprofServer(addr string, log logrus.FieldLogger) (func(), error) {
	if addr == "" {
		addr = "localhost:6060"
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("pprof server failed: %w", err)
	}

	server := &http.Server{
		Handler:           http.DefaultServeMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.WithField("addr", ln.Addr().String()).Info("pprof server listening")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Warn("pprof server stopped")
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
	return stop, nil
}
