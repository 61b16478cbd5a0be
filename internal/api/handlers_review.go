package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/clausecheck/internal/finding"
	"github.com/dgallion1/clausecheck/internal/pipeline"
	"github.com/dgallion1/clausecheck/internal/report"
	"github.com/dgallion1/clausecheck/internal/rules"
	"github.com/dgallion1/clausecheck/internal/store"
)

type reviewRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	Pack  string `json:"pack"`
	AI    bool   `json:"ai"`
}

func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Text == "" {
		jsonError(w, "text is required", http.StatusBadRequest)
		return
	}

	review, err := s.reviewer.ReviewText(r.Context(), pipeline.Request{
		Title: req.Title,
		Text:  req.Text,
		Pack:  req.Pack,
		AI:    req.AI,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	pack, err := s.reviewer.PackKey(r.FormValue("pack"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	job := pipeline.NewJob(filename, r.FormValue("title"), pack, formBool(r, "ai"), data)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/review/%s/status", job.ID),
	})
}

func (s *Server) handleUploadStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) historyStore(w http.ResponseWriter) (store.Store, bool) {
	st := s.reviewer.Store()
	if st == nil {
		jsonError(w, "review history is disabled", http.StatusServiceUnavailable)
		return nil, false
	}
	return st, true
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	st, ok := s.historyStore(w)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	reviews, err := st.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if reviews == nil {
		reviews = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (s *Server) handleGetReview(w http.ResponseWriter, r *http.Request) {
	st, ok := s.historyStore(w)
	if !ok {
		return
	}
	review, err := st.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (s *Server) handleResolveFinding(w http.ResponseWriter, r *http.Request) {
	st, ok := s.historyStore(w)
	if !ok {
		return
	}
	reviewID, findingID := chi.URLParam(r, "id"), chi.URLParam(r, "findingID")
	if err := st.Resolve(r.Context(), reviewID, findingID); err != nil {
		s.writeError(w, err)
		return
	}
	s.log.Info("finding resolved", "review_id", reviewID, "finding_id", findingID)
	writeJSON(w, http.StatusOK, map[string]string{"review_id": reviewID, "finding_id": findingID, "status": "resolved"})
}

// handleReviewReport renders the review as HTML, or Markdown with
// ?format=markdown. severity and q filter the findings; resolved findings
// are left out unless include_resolved=true.
func (s *Server) handleReviewReport(w http.ResponseWriter, r *http.Request) {
	st, ok := s.historyStore(w)
	if !ok {
		return
	}
	review, err := st.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := r.URL.Query()
	fl := finding.Filter{Query: q.Get("q")}
	if sev := finding.Severity(strings.ToLower(q.Get("severity"))); sev != "" {
		if !sev.Valid() {
			jsonError(w, fmt.Sprintf("invalid severity %q", sev), http.StatusBadRequest)
			return
		}
		fl.Severity = sev
	}
	if q.Get("include_resolved") != "true" {
		fl.Resolved = review.ResolvedSet()
	}

	label := review.Pack
	if p, ok := rules.LookupPack(review.Pack); ok {
		label = p.Label
	}
	rep := report.Build(review, label, fl, time.Now())

	if q.Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.Markdown(rep)))
		return
	}
	page, err := report.HTML(rep)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}
