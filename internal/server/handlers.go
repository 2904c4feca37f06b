package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jdalgard/pageplan/pkg/archive"
	"github.com/jdalgard/pageplan/pkg/document"
	"github.com/jdalgard/pageplan/pkg/errors"
	"github.com/jdalgard/pageplan/pkg/measure"
	"github.com/jdalgard/pageplan/pkg/plan"
	"github.com/jdalgard/pageplan/pkg/region"
	"github.com/jdalgard/pageplan/pkg/template"
)

type createJobRequest struct {
	Title     string `json:"title,omitempty"`
	Template  string `json:"template"`
	Document  string `json:"document"`
	ChunkSize int    `json:"chunk_size,omitempty"`
}

type segmentInfo struct {
	Component  string `json:"component"`
	Segment    string `json:"segment"`
	MeasureKey string `json:"measure_key"`
	HomeRegion string `json:"home_region"`
}

type jobResponse struct {
	ID       string          `json:"id"`
	Title    string          `json:"title,omitempty"`
	Status   string          `json:"status"`
	Stats    measure.Stats   `json:"stats"`
	Regions  []region.Config `json:"regions"`
	Segments []segmentInfo   `json:"segments,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}

	tmpl, err := template.Parse([]byte(req.Template))
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := document.Parse([]byte(req.Document))
	if err != nil {
		writeError(w, err)
		return
	}

	segments := document.Decomposer{ChunkSize: req.ChunkSize}.Decompose(doc, tmpl)
	regions := tmpl.Regions()

	title := req.Title
	if title == "" {
		title = doc.Title
	}

	j, err := s.jobs.create(r.Context(), title, segments, regions)
	if err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("job created", "id", j.ID, "segments", len(segments), "regions", len(regions))

	resp := s.jobResponse(j)
	resp.Segments = make([]segmentInfo, 0, len(segments))
	for _, seg := range segments {
		resp.Segments = append(resp.Segments, segmentInfo{
			Component:  seg.Component,
			Segment:    seg.ID,
			MeasureKey: seg.MeasureKey,
			HomeRegion: seg.HomeRegion,
		})
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.jobResponse(j))
}

type measurementsRequest struct {
	Measurements map[string]float64 `json:"measurements"`
}

func (s *Server) handleMeasurements(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req measurementsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if len(req.Measurements) == 0 {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "no measurements given"))
		return
	}

	j.Driver.RecordAll(r.Context(), req.Measurements)
	writeJSON(w, http.StatusOK, s.jobResponse(j))
}

type planResponse struct {
	Plan      *plan.Plan `json:"plan"`
	ArchiveID string     `json:"archive_id,omitempty"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	_, ok, err := j.Driver.TryPlan(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		stats := j.Driver.Stats()
		writeError(w, errors.New(errors.ErrCodeMeasurementIncomplete,
			"not ready to plan: %d of %d measured, stability pending",
			stats.Measured, stats.Required))
		return
	}

	committed, ok := j.Driver.Commit(r.Context())
	if !ok {
		writeError(w, errors.New(errors.ErrCodeMeasurementIncomplete,
			"plan went stale before commit, re-request after measurements settle"))
		return
	}

	resp := planResponse{Plan: committed}
	if s.archive != nil {
		rec := archive.NewRecord(j.Title, committed)
		if err := s.archive.Put(r.Context(), rec); err != nil {
			s.logger.Warn("archive plan", "job", j.ID, "err", err)
		} else {
			resp.ArchiveID = rec.ID
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	committed := j.Driver.Committed()
	if committed == nil {
		writeError(w, errors.New(errors.ErrCodePlanNotFound, "job %s has no committed plan", j.ID))
		return
	}
	writeJSON(w, http.StatusOK, planResponse{Plan: committed})
}

func (s *Server) handleListArchive(w http.ResponseWriter, r *http.Request) {
	list, err := s.archive.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetArchive(w http.ResponseWriter, r *http.Request) {
	rec, err := s.archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) jobResponse(j *job) jobResponse {
	return jobResponse{
		ID:      j.ID,
		Title:   j.Title,
		Status:  j.Driver.Status().String(),
		Stats:   j.Driver.Stats(),
		Regions: j.Regions,
	}
}
