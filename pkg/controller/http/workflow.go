package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/domain/model"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"github.com/neonzero/OpenERM/pkg/usecase"
)

type assessmentRequest struct {
	Method             string   `json:"method"`
	Likelihood         int      `json:"likelihood"`
	Impact             int      `json:"impact"`
	ResidualLikelihood *int     `json:"residualLikelihood"`
	ResidualImpact     *int     `json:"residualImpact"`
	Velocity           *int     `json:"velocity"`
	AppetiteThreshold  *float64 `json:"appetiteThreshold"`
	ReviewerID         *string  `json:"reviewerId"`
	Notes              string   `json:"notes"`
}

func (s *Server) submitAssessment(w http.ResponseWriter, r *http.Request) {
	var req assessmentRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	assessment, err := s.uc.Assessment.SubmitAssessment(r.Context(), tenantID(r), actorID(r), usecase.AssessmentInput{
		RiskID: chi.URLParam(r, "riskID"),
		Method: types.AssessmentMethod(req.Method),
		Scores: model.AssessmentScores{
			Likelihood:         req.Likelihood,
			Impact:             req.Impact,
			ResidualLikelihood: req.ResidualLikelihood,
			ResidualImpact:     req.ResidualImpact,
			Velocity:           req.Velocity,
			AppetiteThreshold:  req.AppetiteThreshold,
		},
		ReviewerID: req.ReviewerID,
		Notes:      req.Notes,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toAssessmentResponse(assessment))
}

func (s *Server) listAssessments(w http.ResponseWriter, r *http.Request) {
	assessments, err := s.uc.Assessment.ListAssessments(r.Context(), tenantID(r), chi.URLParam(r, "riskID"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	out := make([]*assessmentResponse, len(assessments))
	for i, a := range assessments {
		out[i] = toAssessmentResponse(a)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": out})
}

type treatmentRequest struct {
	Title   string     `json:"title"`
	OwnerID *string    `json:"ownerId"`
	DueDate *time.Time `json:"dueDate"`
	Status  string     `json:"status"`
	Tasks   []struct {
		Title   string     `json:"title"`
		Status  string     `json:"status"`
		DueDate *time.Time `json:"dueDate"`
	} `json:"tasks"`
}

func parseStatus(s string) (types.TreatmentStatus, error) {
	status, err := types.ParseTreatmentStatus(s)
	if err != nil {
		return "", goerr.Wrap(usecase.ErrValidation, "invalid treatment status", goerr.V(usecase.FieldKey, "status"), goerr.V("value", s))
	}
	return status, nil
}

func (s *Server) createTreatment(w http.ResponseWriter, r *http.Request) {
	var req treatmentRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	in := usecase.TreatmentInput{
		RiskID:  chi.URLParam(r, "riskID"),
		Title:   req.Title,
		OwnerID: req.OwnerID,
		DueDate: req.DueDate,
	}
	if req.Status != "" {
		status, err := parseStatus(req.Status)
		if err != nil {
			handleError(w, r, err)
			return
		}
		in.Status = status
	}
	for _, t := range req.Tasks {
		in.Tasks = append(in.Tasks, usecase.TaskInput{Title: t.Title, Status: t.Status, DueDate: t.DueDate})
	}

	treatment, err := s.uc.Treatment.CreateTreatment(r.Context(), tenantID(r), actorID(r), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTreatmentResponse(treatment))
}

func (s *Server) listTreatments(w http.ResponseWriter, r *http.Request) {
	treatments, err := s.uc.Treatment.ListTreatments(r.Context(), tenantID(r), chi.URLParam(r, "riskID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": toTreatmentResponses(treatments)})
}

func (s *Server) listOverdueTreatments(w http.ResponseWriter, r *http.Request) {
	treatments, err := s.uc.Treatment.ListOverdueTreatments(r.Context(), tenantID(r), time.Now())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": toTreatmentResponses(treatments)})
}

type treatmentStatusRequest struct {
	Status             string `json:"status"`
	ResidualLikelihood *int   `json:"residualLikelihood"`
	ResidualImpact     *int   `json:"residualImpact"`
	Tasks              []struct {
		ID      string     `json:"id"`
		Status  *string    `json:"status"`
		DueDate *time.Time `json:"dueDate"`
	} `json:"tasks"`
}

func (s *Server) updateTreatmentStatus(w http.ResponseWriter, r *http.Request) {
	var req treatmentStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	status, err := parseStatus(req.Status)
	if err != nil {
		handleError(w, r, err)
		return
	}

	update := usecase.TreatmentStatusUpdate{
		Status:             status,
		ResidualLikelihood: req.ResidualLikelihood,
		ResidualImpact:     req.ResidualImpact,
	}
	for _, t := range req.Tasks {
		update.Tasks = append(update.Tasks, usecase.TaskUpdate{ID: t.ID, Status: t.Status, DueDate: t.DueDate})
	}

	treatment, err := s.uc.Treatment.UpdateStatus(r.Context(), tenantID(r), actorID(r), chi.URLParam(r, "treatmentID"), update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toTreatmentResponse(treatment))
}

type indicatorRequest struct {
	Name      string   `json:"name"`
	Direction string   `json:"direction"`
	Threshold *float64 `json:"threshold"`
	Unit      string   `json:"unit"`
	Cadence   string   `json:"cadence"`
}

func (s *Server) createIndicator(w http.ResponseWriter, r *http.Request) {
	var req indicatorRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	direction, err := types.ParseIndicatorDirection(req.Direction)
	if err != nil {
		handleError(w, r, goerr.Wrap(usecase.ErrValidation, "direction must be above or below", goerr.V("value", req.Direction)))
		return
	}

	indicator, err := s.uc.Indicator.CreateIndicator(r.Context(), tenantID(r), actorID(r), chi.URLParam(r, "riskID"), usecase.IndicatorInput{
		Name:      req.Name,
		Direction: direction,
		Threshold: req.Threshold,
		Unit:      req.Unit,
		Cadence:   req.Cadence,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toIndicatorResponse(indicator))
}

func (s *Server) listIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := s.uc.Indicator.ListIndicators(r.Context(), tenantID(r), chi.URLParam(r, "riskID"))
	if err != nil {
		handleError(w, r, err)
		return
	}

	out := make([]*indicatorResponse, len(indicators))
	for i, ind := range indicators {
		out[i] = toIndicatorResponse(ind)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": out})
}

func (s *Server) recordIndicatorReading(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value      *float64   `json:"value"`
		RecordedAt *time.Time `json:"recordedAt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Value == nil {
		handleError(w, r, goerr.Wrap(usecase.ErrValidation, "value is required"))
		return
	}

	reading, err := s.uc.Indicator.RecordIndicatorReading(r.Context(), tenantID(r), actorID(r), chi.URLParam(r, "indicatorID"), *req.Value, req.RecordedAt)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toReadingResponse(reading))
}

func (s *Server) indicatorTrend(w http.ResponseWriter, r *http.Request) {
	days, err := queryInt(r.URL.Query().Get("days"), "days")
	if err != nil {
		handleError(w, r, err)
		return
	}
	n := 0
	if days != nil {
		n = *days
	}

	readings, err := s.uc.Indicator.IndicatorTrend(r.Context(), tenantID(r), chi.URLParam(r, "indicatorID"), n)
	if err != nil {
		handleError(w, r, err)
		return
	}

	out := make([]*readingResponse, len(readings))
	for i, reading := range readings {
		out[i] = toReadingResponse(reading)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"items": out})
}
