package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"visitprep/internal/core"
	"visitprep/internal/records"
	"visitprep/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server bundles together the dependencies required by HTTP handlers.  It
// implements http.Handler so it can be passed to an http.Server.
type Server struct {
	Catalog   *records.Catalog
	Sessions  *session.Store
	Visits    *core.VisitService
	Templates *template.Template
	Log       *zap.Logger

	router chi.Router
}

// NewServer constructs a Server and its routes.  Templates are embedded in
// the binary.
func NewServer(cat *records.Catalog, sessions *session.Store, visits *core.VisitService, log *zap.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		Catalog:   cat,
		Sessions:  sessions,
		Visits:    visits,
		Templates: tmpl,
		Log:       log,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.Log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/patients", s.handleListPatients)
		r.Get("/patients/{patientID}", s.handleGetPatient)
		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Post("/plan", s.handleGeneratePlan)
			r.Post("/followups", s.handleAskFollowUp)
		})
	})

	r.Get("/", s.handleIndexPage)
	r.Post("/visits", s.handleStartVisit)
	r.Route("/visits/{sessionID}", func(r chi.Router) {
		r.Get("/", s.handleVisitPage)
		r.Post("/plan", s.handleVisitPlan)
		r.Post("/followups", s.handleVisitFollowUp)
	})
	return r
}

// requestLogger writes one structured line per request.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				log.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", status),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"patients": s.Catalog.Len(),
		"sessions": s.Sessions.Len(),
	})
}

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Catalog.List())
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Catalog.Get(chi.URLParam(r, "patientID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type createSessionRequest struct {
	PatientID string `json:"patient_id"`
}

// handleCreateSession starts an empty visit session for a known patient.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	sess, err := s.startSession(req.PatientID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"session_id": sess.ID.String(),
		"patient_id": sess.PatientID,
	})
}

type sessionResponse struct {
	core.SessionSnapshot
	Lines []core.PlanLine `json:"lines"`
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap := sess.Snapshot()
	writeJSON(w, http.StatusOK, sessionResponse{SessionSnapshot: snap, Lines: core.RenderPlan(snap.Plan)})
}

// handleGeneratePlan makes a new completion request on every call and
// replaces the session's plan.
func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	plan, err := s.generatePlan(r.Context(), sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"plan":  plan,
		"lines": core.RenderPlan(plan),
	})
}

type followUpRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAskFollowUp(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req followUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return
	}
	res, err := s.Visits.AskFollowUp(r.Context(), sess, req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) startSession(patientID string) (*core.VisitSession, error) {
	if _, err := s.Catalog.Get(patientID); err != nil {
		return nil, err
	}
	sess := s.Sessions.Create(patientID)
	s.Log.Info("session created", zap.Stringer("session_id", sess.ID), zap.String("patient_id", patientID))
	return sess, nil
}

// lookupSession resolves the {sessionID} URL parameter.  A malformed ID is
// reported as not found.
func (s *Server) lookupSession(r *http.Request) (*core.VisitSession, error) {
	id, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		return nil, session.ErrNotFound
	}
	return s.Sessions.Get(id)
}

func (s *Server) generatePlan(ctx context.Context, sess *core.VisitSession) (string, error) {
	rec, err := s.Catalog.Get(sess.PatientID)
	if err != nil {
		return "", err
	}
	return s.Visits.GeneratePlan(ctx, sess, rec)
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.Log.Error("unhandled error", zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var ce *core.CompletionError
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoPlan), errors.Is(err, core.ErrPlanChanged):
		return http.StatusConflict
	case errors.Is(err, records.ErrNotFound), errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &ce):
		if ce.Timeout() {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
