package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/neonzero/OpenERM/pkg/usecase"
	"github.com/neonzero/OpenERM/pkg/utils/safe"
)

type riskRequest struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Cause              string   `json:"cause"`
	Consequence        string   `json:"consequence"`
	Taxonomy           []string `json:"taxonomy"`
	OwnerID            *string  `json:"ownerId"`
	OwnerEmail         string   `json:"ownerEmail"`
	InherentLikelihood int      `json:"inherentLikelihood"`
	InherentImpact     int      `json:"inherentImpact"`
	ResidualLikelihood *int     `json:"residualLikelihood"`
	ResidualImpact     *int     `json:"residualImpact"`
	Status             string   `json:"status"`
	KeyRisk            bool     `json:"keyRisk"`
	Tags               []string `json:"tags"`
}

func (s *Server) createRisk(w http.ResponseWriter, r *http.Request) {
	var req riskRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	risk, err := s.uc.Risk.CreateRisk(r.Context(), tenantID(r), actorID(r), usecase.RiskInput{
		Title:              req.Title,
		Description:        req.Description,
		Cause:              req.Cause,
		Consequence:        req.Consequence,
		Taxonomy:           req.Taxonomy,
		OwnerID:            req.OwnerID,
		OwnerEmail:         req.OwnerEmail,
		InherentLikelihood: req.InherentLikelihood,
		InherentImpact:     req.InherentImpact,
		ResidualLikelihood: req.ResidualLikelihood,
		ResidualImpact:     req.ResidualImpact,
		Status:             req.Status,
		KeyRisk:            req.KeyRisk,
		Tags:               req.Tags,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toRiskResponse(risk))
}

func (s *Server) getRisk(w http.ResponseWriter, r *http.Request) {
	risk, err := s.uc.Risk.GetRisk(r.Context(), tenantID(r), chi.URLParam(r, "riskID"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRiskResponse(risk))
}

// parseRiskQuery reads list filters from the query string. taxonomy may repeat or be comma separated.
func parseRiskQuery(r *http.Request) (usecase.RiskQuery, error) {
	values := r.URL.Query()
	q := usecase.RiskQuery{
		Search:  values.Get("search"),
		Status:  values.Get("status"),
		OwnerID: values.Get("ownerId"),
		Sort:    usecase.RiskSort(values.Get("sort")),
	}

	for _, v := range values["taxonomy"] {
		for _, token := range strings.Split(v, ",") {
			if token = strings.TrimSpace(token); token != "" {
				q.Taxonomy = append(q.Taxonomy, token)
			}
		}
	}

	var err error
	if q.KeyRisk, err = queryBool(values.Get("keyRisk"), "keyRisk"); err != nil {
		return q, err
	}
	if q.AppetiteBreached, err = queryBool(values.Get("appetiteBreached"), "appetiteBreached"); err != nil {
		return q, err
	}
	if q.Likelihood, err = queryInt(values.Get("likelihood"), "likelihood"); err != nil {
		return q, err
	}
	if q.Impact, err = queryInt(values.Get("impact"), "impact"); err != nil {
		return q, err
	}
	return q, nil
}

func queryBool(v, name string) (*bool, error) {
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, goerr.Wrap(usecase.ErrValidation, "invalid boolean query parameter", goerr.V(usecase.FieldKey, name), goerr.V("value", v))
	}
	return &b, nil
}

func queryInt(v, name string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, goerr.Wrap(usecase.ErrValidation, "invalid integer query parameter", goerr.V(usecase.FieldKey, name), goerr.V("value", v))
	}
	return &n, nil
}

func (s *Server) listRisks(w http.ResponseWriter, r *http.Request) {
	q, err := parseRiskQuery(r)
	if err != nil {
		handleError(w, r, err)
		return
	}

	risks, err := s.uc.Risk.ListRisks(r.Context(), tenantID(r), q)
	if err != nil {
		handleError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"items": toRiskResponses(risks),
		"total": len(risks),
	})
}

func (s *Server) markKeyRisk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		KeyRisk *bool `json:"keyRisk"`
	}
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.KeyRisk == nil {
		handleError(w, r, goerr.Wrap(usecase.ErrValidation, "keyRisk is required"))
		return
	}

	risk, err := s.uc.Risk.MarkKeyRisk(r.Context(), tenantID(r), actorID(r), chi.URLParam(r, "riskID"), *req.KeyRisk)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toRiskResponse(risk))
}

func (s *Server) recalibrateAppetite(w http.ResponseWriter, r *http.Request) {
	updated, err := s.uc.Risk.RecalibrateAppetite(r.Context(), tenantID(r), actorID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"updated": updated})
}

type appetiteRequest struct {
	Appetite *float64 `json:"appetite"`
}

func (s *Server) updateAppetite(w http.ResponseWriter, r *http.Request) {
	var req appetiteRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	updated, err := s.uc.Risk.UpdateAppetite(r.Context(), tenantID(r), actorID(r), req.Appetite)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]int{"updated": updated})
}

func (s *Server) importRisks(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes+1))
	if err != nil {
		handleError(w, r, goerr.Wrap(err, "failed to read import body"))
		return
	}
	if len(body) > maxImportBytes {
		handleError(w, r, goerr.Wrap(usecase.ErrValidation, "import body too large", goerr.V("limit", maxImportBytes)))
		return
	}

	result, err := s.uc.Import.ImportRisks(r.Context(), tenantID(r), actorID(r), string(body))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) exportRisks(w http.ResponseWriter, r *http.Request) {
	text, err := s.uc.Export.Export(r.Context(), tenantID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="risks.csv"`)
	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, []byte(text))
}

func (s *Server) heatmap(w http.ResponseWriter, r *http.Request) {
	top, err := queryInt(r.URL.Query().Get("top"), "top")
	if err != nil {
		handleError(w, r, err)
		return
	}
	n := 5
	if top != nil {
		n = *top
	}

	hm, err := s.uc.Heatmap.Build(r.Context(), tenantID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toHeatmapResponse(hm, n))
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events := s.recorder.Events(tenantID(r))
	out := make([]*eventResponse, len(events))
	for i, ev := range events {
		out[i] = toEventResponse(ev)
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"events": out})
}
