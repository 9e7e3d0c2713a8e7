package hudfeed

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"
)

// Server serves the hub at /ws on addr.
type Server struct {
	Hub *Hub
	srv *http.Server
}

func NewServer(addr string, hub *Hub) *Server {
	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	return &Server{
		Hub: hub,
		srv: &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second},
	}
}

// Start listens in the background.
func (s *Server) Start() {
	go func() {
		log.Printf("HUDFeed: listening on %s", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HUDFeed: serve: %v", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.Hub.Close()
	return s.srv.Shutdown(ctx)
}
