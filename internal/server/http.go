package server

import (
	"net/http"

	"github.com/spf13/viper"

	"github.com/mithrel/quire/internal/journal"
	"github.com/mithrel/quire/internal/logging"
)

// maxBodyBytes bounds request bodies; the largest valid entry is far below it.
const maxBodyBytes = 1 << 20

// Server exposes the journal over HTTP.
type Server struct {
	cfg     *viper.Viper
	journal *journal.Service
	log     logging.Logger
}

func New(cfg *viper.Viper, j *journal.Service, log logging.Logger) *Server {
	if cfg == nil {
		cfg = viper.New()
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Server{cfg: cfg, journal: j, log: log}
}

// Router returns an http.Handler with registered routes and middleware.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	health := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}
	mux.HandleFunc("GET /healthz", health)
	mux.HandleFunc("GET /health", health)

	mux.HandleFunc("POST /entries", s.handleCreate)
	mux.HandleFunc("POST /entries/{$}", s.handleCreate)
	mux.HandleFunc("GET /entries", s.handleList)
	mux.HandleFunc("GET /entries/{$}", s.handleList)
	mux.HandleFunc("GET /entries/search", s.handleSearch)
	mux.HandleFunc("GET /entries/{id}", s.handleGet)
	mux.HandleFunc("PATCH /entries/{id}", s.handleUpdate)
	mux.HandleFunc("PUT /entries/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /entries/{id}", s.handleDelete)

	return requestID(s.accessLog(recoverer(s.log)(mux)))
}

func (s *Server) pageSizes() (def, max int) {
	def, max = 20, 100
	if n := s.cfg.GetInt("server.default_page_size"); n > 0 {
		def = n
	}
	if n := s.cfg.GetInt("server.max_page_size"); n > 0 {
		max = n
	}
	return def, max
}
