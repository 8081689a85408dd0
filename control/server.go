// Package control serves the HTTP interface used to drive a session's
// features from outside the process.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"gofreeze/feature"
	"gofreeze/session"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/gorilla/mux"
)

// Server routes control requests to a session.
type Server struct {
	sess    *session.Session
	metrics http.Handler
	router  *mux.Router
	log     *logger.Logger
}

// NewServer builds the routes. metrics may be nil, in which case /metrics is
// not served.
func NewServer(sess *session.Session, metrics http.Handler) *Server {
	s := &Server{
		sess:    sess,
		metrics: metrics,
		log:     logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "control")),
	}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/features", s.listFeatures).Methods(http.MethodGet)
	api.HandleFunc("/features/{name}", s.getFeature).Methods(http.MethodGet)
	api.HandleFunc("/features/{name}/start", s.startFeature).Methods(http.MethodPost)
	api.HandleFunc("/features/{name}/stop", s.stopFeature).Methods(http.MethodPost)
	api.HandleFunc("/features/{name}/value", s.setValue).Methods(http.MethodPut)
	api.HandleFunc("/features/{name}/pairs", s.listPairs).Methods(http.MethodGet)
	api.HandleFunc("/features/{name}/pairs", s.clearPairs).Methods(http.MethodDelete)
	api.HandleFunc("/features/{name}/pairs/{action}", s.pairAction).Methods(http.MethodPost)
	if metrics != nil {
		r.Handle("/metrics", metrics).Methods(http.MethodGet)
	}
	s.router = r

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Infoln("Control listening on", listener.Addr().String())

	err = srv.Serve(listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type valueBody struct {
	Value *float64 `json:"value"`
}

type stopBody struct {
	feature.Status
	Warning string `json:"warning,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("Write response: ", err)
	}
}

// writeError maps err to a status code by failure kind.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	kind := feature.KindOf(err)

	switch {
	case errors.Is(err, session.ErrUnknownFeature):
		code = http.StatusNotFound
	case kind == feature.KindStateConflict:
		code = http.StatusConflict
	case kind == feature.KindResolution, kind == feature.KindValidation:
		code = http.StatusUnprocessableEntity
	case kind == feature.KindWrite, kind == feature.KindScanRead:
		code = http.StatusBadGateway
	}

	s.writeJSON(w, code, errorBody{Error: err.Error(), Kind: string(kind)})
}

func (s *Server) badRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *feature.Feature {
	f, err := s.sess.Feature(mux.Vars(r)["name"])
	if err != nil {
		s.writeError(w, err)
		return nil
	}
	return f
}

func (s *Server) listFeatures(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.sess.Statuses())
}

func (s *Server) getFeature(w http.ResponseWriter, r *http.Request) {
	f := s.lookup(w, r)
	if f == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, f.Status())
}

func (s *Server) startFeature(w http.ResponseWriter, r *http.Request) {
	f := s.lookup(w, r)
	if f == nil {
		return
	}
	if err := f.Start(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f.Status())
}

// stopFeature always answers 200 once the feature is idle; a failed restore
// write is passed back as a warning.
func (s *Server) stopFeature(w http.ResponseWriter, r *http.Request) {
	f := s.lookup(w, r)
	if f == nil {
		return
	}

	body := stopBody{}
	if err := f.Stop(); err != nil {
		body.Warning = err.Error()
	}
	body.Status = f.Status()

	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) setValue(w http.ResponseWriter, r *http.Request) {
	f := s.lookup(w, r)
	if f == nil {
		return
	}

	var body valueBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.badRequest(w, "invalid body: "+err.Error())
		return
	}
	if body.Value == nil {
		s.badRequest(w, "missing value")
		return
	}

	f.SetEnabledValue(*body.Value)
	s.writeJSON(w, http.StatusOK, f.Status())
}

func (s *Server) listPairs(w http.ResponseWriter, r *http.Request) {
	f := s.lookup(w, r)
	if f == nil {
		return
	}
	s.writeJSON(w, http.StatusOK, f.Pairs())
}

func (s *Server) clearPairs(w http.ResponseWriter, r *http.Request) {
	f := s.lookup(w, r)
	if f == nil {
		return
	}
	if err := f.ClearPairs(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f.Status())
}

func (s *Server) pairAction(w http.ResponseWriter, r *http.Request) {
	f := s.lookup(w, r)
	if f == nil {
		return
	}

	action, err := feature.ParsePairAction(mux.Vars(r)["action"])
	if err != nil {
		s.badRequest(w, err.Error())
		return
	}

	if err := f.Apply(action); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f.Status())
}
