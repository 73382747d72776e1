// web exposes the buzzer settings and beep requests over http.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"code.sztanpet.net/zvpsz/buzzer/internal/buzzer"
	"code.sztanpet.net/zvpsz/buzzer/internal/pattern"
	"code.sztanpet.net/zvpsz/buzzer/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/juju/loggo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

var logger = loggo.GetLogger("buzzerd.web")

// BeepRate limits how often beeps can be requested over http.
var BeepRate = rate.Every(250 * time.Millisecond)

type Server struct {
	ctrl    *buzzer.Controller
	store   storage.Store
	queue   *buzzer.Queue
	limiter *rate.Limiter
	router  chi.Router
}

func New(ctrl *buzzer.Controller, store storage.Store, queue *buzzer.Queue) *Server {
	s := &Server{
		ctrl:    ctrl,
		store:   store,
		queue:   queue,
		limiter: rate.NewLimiter(BeepRate, 4),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleStatus)
	r.Get("/status", s.handleStatus)
	r.Get("/buzzer-sp", s.handleSettings)
	r.Get("/buzzer-save", s.handleSaveSettings)
	r.Post("/buzzer-save", s.handleSaveSettings)
	r.Post("/beep", s.handleBeep)
	r.Handle("/metrics", promhttp.Handler())

	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Infof("listening on %v", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; err != http.ErrServerClosed {
		return err
	}
	return nil
}

type status struct {
	State      string `json:"state"`
	Ready      bool   `json:"ready"`
	Pin        int    `json:"pin"`
	ActiveHigh bool   `json:"active_high"`
	Startup    string `json:"startup_beep"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.ctrl.Config()
	writeJSON(w, http.StatusOK, status{
		State:      s.ctrl.State().String(),
		Ready:      s.ctrl.IsReady(),
		Pin:        cfg.Pin,
		ActiveHigh: cfg.ActiveHigh,
		Startup:    pattern.Encode(s.ctrl.Settings().StartupBeep),
	})
}

// handleSettings shows what is persisted, not what is loaded
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Load()
	if errors.Is(err, storage.ErrNotFound) {
		doc = storage.Document{}
	} else if err != nil {
		logger.Errorf("loading settings: %v", err)
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc := storage.Document{}
	for k, v := range r.Form {
		if len(v) > 0 {
			doc[k] = v[0]
		}
	}

	s.ctrl.LoadFromDocument(doc)
	if err := s.ctrl.SaveSettings(s.store); err != nil {
		http.Error(w, "failed to save settings", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleBeep(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow() {
		http.Error(w, "too many beeps", http.StatusTooManyRequests)
		return
	}

	p := pattern.Pattern{buzzer.DefaultBeep}
	if v := r.FormValue("pattern"); v != "" {
		p = pattern.Decode(v)
		if len(p) == 0 {
			http.Error(w, "invalid pattern", http.StatusBadRequest)
			return
		}
	}

	if !s.queue.Request(p) {
		http.Error(w, "beep queue full", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"pattern": pattern.Encode(p)})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debugf("writing response: %v", err)
	}
}
