package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/nicolagi/gcemetad/metadata"
	"github.com/nicolagi/gcemetad/tool"
	log "github.com/sirupsen/logrus"
)

type Option func(*options)

type options struct {
	address string
	entries []metadata.Entry
	runner  tool.Runner
}

func WithAddress(value string) Option {
	return func(o *options) {
		o.address = value
	}
}

func WithEntries(value []metadata.Entry) Option {
	return func(o *options) {
		o.entries = value
	}
}

func WithRunner(value tool.Runner) Option {
	return func(o *options) {
		o.runner = value
	}
}

// Server serves the emulated metadata endpoints over HTTP.
type Server struct {
	opts options
	ln   net.Listener
	http *http.Server
}

func New(opts ...Option) *Server {
	s := &Server{}
	s.opts.address = ":80"
	s.opts.runner = tool.NewShellRunner()
	for _, o := range opts {
		o(&s.opts)
	}
	s.http = &http.Server{Handler: http.HandlerFunc(s.handle)}
	return s
}

// Listen binds the listening socket and returns the bound address,
// which is useful with ":0" addresses in tests.
func (s *Server) Listen() (addr string, err error) {
	s.ln, err = net.Listen("tcp", s.opts.address)
	if err != nil {
		return
	}
	addr = s.ln.Addr().String()
	return
}

// Serve accepts and handles requests. The function will return (some
// time after) Shutdown is called.
func (s *Server) Serve() error {
	err := s.http.Serve(s.ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown instructs the server to shut down, waiting for in-flight
// requests to complete, within a bound.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// One tool invocation per request, no coalescing of identical
// concurrent requests. The method is not checked; the surface is
// GET-shaped but historical clients have not been strict about it.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	logger := log.WithFields(log.Fields{
		"request": uuid.New().String(),
		"path":    r.URL.Path,
	})
	entry, ok := metadata.Match(s.opts.entries, r.URL.Path)
	if !ok {
		logger.Debug("No route")
		w.WriteHeader(http.StatusNotFound)
		return
	}
	result, err := metadata.Lookup(r.Context(), s.opts.runner, entry)
	if err != nil {
		logger.WithField("err", err).Error("Lookup failed")
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	logger.WithField("entry", entry.Name).Debug("Success")
	w.Header().Set("Content-Type", result.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Body); err != nil {
		logger.WithField("err", err).Error("Failed writing response")
	}
}
