package http

import (
	"bytes"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"visitprep/internal/core"
	"visitprep/pkg"
)

// visitView is the data behind the visit page.
type visitView struct {
	Patient pkg.PatientRecord
	Session core.SessionSnapshot
	Lines   []core.PlanLine
	Error   string
}

// handleIndexPage renders the patient list.
func (s *Server) handleIndexPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "index.html", struct {
		Patients []pkg.PatientPreview
	}{s.Catalog.List()})
}

// handleStartVisit creates a session from the patient list form and redirects
// to its page.
func (s *Server) handleStartVisit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess, err := s.startSession(r.FormValue("patient_id"))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	http.Redirect(w, r, visitURL(sess), http.StatusSeeOther)
}

func (s *Server) handleVisitPage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	s.renderVisit(w, http.StatusOK, sess, "")
}

func (s *Server) handleVisitPlan(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if _, err := s.generatePlan(r.Context(), sess); err != nil {
		s.renderVisit(w, statusFor(err), sess, err.Error())
		return
	}
	http.Redirect(w, r, visitURL(sess), http.StatusSeeOther)
}

// handleVisitFollowUp records a follow-up.  A blank question is ignored and
// the page is shown again unchanged.
func (s *Server) handleVisitFollowUp(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	q := r.FormValue("question")
	if strings.TrimSpace(q) == "" {
		http.Redirect(w, r, visitURL(sess), http.StatusSeeOther)
		return
	}
	if _, err := s.Visits.AskFollowUp(r.Context(), sess, q); err != nil {
		s.renderVisit(w, statusFor(err), sess, err.Error())
		return
	}
	http.Redirect(w, r, visitURL(sess), http.StatusSeeOther)
}

func (s *Server) renderVisit(w http.ResponseWriter, status int, sess *core.VisitSession, msg string) {
	rec, err := s.Catalog.Get(sess.PatientID)
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	snap := sess.Snapshot()
	s.render(w, status, "visit.html", visitView{
		Patient: rec,
		Session: snap,
		Lines:   core.RenderPlan(snap.Plan),
		Error:   msg,
	})
}

// render executes a template into a buffer so a failure can still produce a
// clean 500.
func (s *Server) render(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := s.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.Log.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func visitURL(sess *core.VisitSession) string {
	return "/visits/" + sess.ID.String()
}
