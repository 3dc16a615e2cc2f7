// Package web exposes translation over HTTP: a translator listing and a
// translate endpoint. Arrangement enumeration is factorial in the token
// count, so the server enforces a token cap and a wall-clock timeout
// instead of trusting its callers.
package web

import (
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/gorilla/mux"

	"github.com/corpling/cqptree/internal/frontend"
	"github.com/corpling/cqptree/internal/store"
)

// Options configures a Server. Zero values fall back to defaults.
type Options struct {
	// Registry supplies the front ends. Defaults to frontend.Default().
	Registry *frontend.Registry
	// Logger receives one line per handled request. Defaults to a nop.
	Logger log.Logger
	// TokenLimit caps the tokens a single query body may bind.
	TokenLimit int
	// Timeout bounds the wall-clock time spent translating one request.
	Timeout time.Duration
	// Log is the translation log. Nil disables recording.
	Log *store.Store
}

// Server handles translation requests.
type Server struct {
	registry *frontend.Registry
	logger   log.Logger
	limit    int
	timeout  time.Duration
	log      *store.Store
}

// NewServer creates a server from the given options.
func NewServer(opts Options) *Server {
	s := &Server{
		registry: opts.Registry,
		logger:   opts.Logger,
		limit:    opts.TokenLimit,
		timeout:  opts.Timeout,
		log:      opts.Log,
	}
	if s.registry == nil {
		s.registry = frontend.Default()
	}
	if s.logger == nil {
		s.logger = log.NewNopLogger()
	}
	if s.limit <= 0 {
		s.limit = 5
	}
	if s.timeout <= 0 {
		s.timeout = 5 * time.Second
	}
	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/translators", s.handleTranslators).Methods(http.MethodGet)
	r.HandleFunc("/translate", s.handleTranslate).Methods(http.MethodPost)
	return r
}
