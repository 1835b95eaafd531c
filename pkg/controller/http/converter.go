package http

import (
	"time"

	"github.com/neonzero/OpenERM/pkg/domain/model"
)

type riskResponse struct {
	ID                 string    `json:"id"`
	TenantID           string    `json:"tenantId"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Taxonomy           []string  `json:"taxonomy"`
	Cause              string    `json:"cause"`
	Consequence        string    `json:"consequence"`
	OwnerID            *string   `json:"ownerId"`
	InherentLikelihood int       `json:"inherentLikelihood"`
	InherentImpact     int       `json:"inherentImpact"`
	InherentScore      int       `json:"inherentScore"`
	ResidualLikelihood *int      `json:"residualLikelihood"`
	ResidualImpact     *int      `json:"residualImpact"`
	ResidualScore      *int      `json:"residualScore"`
	AppetiteThreshold  *float64  `json:"appetiteThreshold"`
	AppetiteBreached   bool      `json:"appetiteBreached"`
	Status             string    `json:"status"`
	KeyRisk            bool      `json:"keyRisk"`
	Tags               []string  `json:"tags"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func toRiskResponse(r *model.Risk) *riskResponse {
	return &riskResponse{
		ID:                 r.ID,
		TenantID:           r.TenantID,
		Title:              r.Title,
		Description:        r.Description,
		Taxonomy:           nonNil(r.Taxonomy),
		Cause:              r.Cause,
		Consequence:        r.Consequence,
		OwnerID:            r.OwnerID,
		InherentLikelihood: r.InherentLikelihood,
		InherentImpact:     r.InherentImpact,
		InherentScore:      r.InherentScore(),
		ResidualLikelihood: r.ResidualLikelihood,
		ResidualImpact:     r.ResidualImpact,
		ResidualScore:      r.ResidualScore,
		AppetiteThreshold:  r.AppetiteThreshold,
		AppetiteBreached:   r.AppetiteBreached,
		Status:             r.Status,
		KeyRisk:            r.KeyRisk,
		Tags:               nonNil(r.Tags),
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func toRiskResponses(risks []*model.Risk) []*riskResponse {
	out := make([]*riskResponse, len(risks))
	for i, r := range risks {
		out[i] = toRiskResponse(r)
	}
	return out
}

type assessmentResponse struct {
	ID                 string     `json:"id"`
	RiskID             string     `json:"riskId"`
	Method             string     `json:"method"`
	Likelihood         int        `json:"likelihood"`
	Impact             int        `json:"impact"`
	ResidualLikelihood *int       `json:"residualLikelihood"`
	ResidualImpact     *int       `json:"residualImpact"`
	Velocity           *int       `json:"velocity"`
	AppetiteThreshold  *float64   `json:"appetiteThreshold"`
	ResidualScore      int        `json:"residualScore"`
	MatrixBucket       string     `json:"matrixBucket"`
	ReviewerID         *string    `json:"reviewerId"`
	ApprovedAt         *time.Time `json:"approvedAt"`
	Notes              string     `json:"notes"`
	CreatedAt          time.Time  `json:"createdAt"`
}

func toAssessmentResponse(a *model.Assessment) *assessmentResponse {
	return &assessmentResponse{
		ID:                 a.ID,
		RiskID:             a.RiskID,
		Method:             a.Method.String(),
		Likelihood:         a.Scores.Likelihood,
		Impact:             a.Scores.Impact,
		ResidualLikelihood: a.Scores.ResidualLikelihood,
		ResidualImpact:     a.Scores.ResidualImpact,
		Velocity:           a.Scores.Velocity,
		AppetiteThreshold:  a.Scores.AppetiteThreshold,
		ResidualScore:      a.ResidualScore,
		MatrixBucket:       a.MatrixBucket,
		ReviewerID:         a.ReviewerID,
		ApprovedAt:         a.ApprovedAt,
		Notes:              a.Notes,
		CreatedAt:          a.CreatedAt,
	}
}

type taskResponse struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Status  string     `json:"status"`
	DueDate *time.Time `json:"dueDate"`
}

type treatmentResponse struct {
	ID        string         `json:"id"`
	RiskID    string         `json:"riskId"`
	Title     string         `json:"title"`
	OwnerID   *string        `json:"ownerId"`
	DueDate   *time.Time     `json:"dueDate"`
	Status    string         `json:"status"`
	Tasks     []taskResponse `json:"tasks"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func toTreatmentResponse(t *model.Treatment) *treatmentResponse {
	resp := &treatmentResponse{
		ID:        t.ID,
		RiskID:    t.RiskID,
		Title:     t.Title,
		OwnerID:   t.OwnerID,
		DueDate:   t.DueDate,
		Status:    t.Status.String(),
		Tasks:     make([]taskResponse, len(t.Tasks)),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	for i, task := range t.Tasks {
		resp.Tasks[i] = taskResponse{
			ID:      task.ID,
			Title:   task.Title,
			Status:  task.Status,
			DueDate: task.DueDate,
		}
	}
	return resp
}

func toTreatmentResponses(treatments []*model.Treatment) []*treatmentResponse {
	out := make([]*treatmentResponse, len(treatments))
	for i, t := range treatments {
		out[i] = toTreatmentResponse(t)
	}
	return out
}

type indicatorResponse struct {
	ID               string     `json:"id"`
	RiskID           string     `json:"riskId"`
	Name             string     `json:"name"`
	Direction        string     `json:"direction"`
	Threshold        *float64   `json:"threshold"`
	Unit             string     `json:"unit"`
	Cadence          string     `json:"cadence"`
	LatestValue      *float64   `json:"latestValue"`
	LatestRecordedAt *time.Time `json:"latestRecordedAt"`
	Breached         bool       `json:"breached"`
}

func toIndicatorResponse(i *model.Indicator) *indicatorResponse {
	return &indicatorResponse{
		ID:               i.ID,
		RiskID:           i.RiskID,
		Name:             i.Name,
		Direction:        i.Direction.String(),
		Threshold:        i.Threshold,
		Unit:             i.Unit,
		Cadence:          i.Cadence,
		LatestValue:      i.LatestValue,
		LatestRecordedAt: i.LatestRecordedAt,
		Breached:         i.Breached,
	}
}

type readingResponse struct {
	ID          string    `json:"id"`
	IndicatorID string    `json:"indicatorId"`
	Value       float64   `json:"value"`
	RecordedAt  time.Time `json:"recordedAt"`
	Breached    bool      `json:"breached"`
}

func toReadingResponse(r *model.IndicatorReading) *readingResponse {
	return &readingResponse{
		ID:          r.ID,
		IndicatorID: r.IndicatorID,
		Value:       r.Value,
		RecordedAt:  r.RecordedAt,
		Breached:    r.Breached,
	}
}

type riskSummaryResponse struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Status           string `json:"status"`
	Likelihood       int    `json:"likelihood"`
	Impact           int    `json:"impact"`
	ResidualScore    int    `json:"residualScore"`
	AppetiteBreached bool   `json:"appetiteBreached"`
	KeyRisk          bool   `json:"keyRisk"`
}

type heatmapCellResponse struct {
	Likelihood int                   `json:"likelihood"`
	Impact     int                   `json:"impact"`
	Score      int                   `json:"score"`
	Color      string                `json:"color"`
	Count      int                   `json:"count"`
	Risks      []riskSummaryResponse `json:"risks"`
}

type heatmapResponse struct {
	Thresholds struct {
		GreenMax float64 `json:"greenMax"`
		AmberMax float64 `json:"amberMax"`
		RedMax   float64 `json:"redMax"`
	} `json:"thresholds"`
	Cells    map[string]*heatmapCellResponse `json:"cells"`
	Ordered  []*heatmapCellResponse          `json:"ordered"`
	Totals   map[string]int                  `json:"totals"`
	TopRisks []riskSummaryResponse           `json:"topRisks"`
}

func toRiskSummaries(risks []model.RiskSummary) []riskSummaryResponse {
	out := make([]riskSummaryResponse, len(risks))
	for i, r := range risks {
		out[i] = riskSummaryResponse{
			ID:               r.ID,
			Title:            r.Title,
			Status:           r.Status,
			Likelihood:       r.Likelihood,
			Impact:           r.Impact,
			ResidualScore:    r.ResidualScore,
			AppetiteBreached: r.AppetiteBreached,
			KeyRisk:          r.KeyRisk,
		}
	}
	return out
}

func toHeatmapResponse(h *model.Heatmap, top int) *heatmapResponse {
	resp := &heatmapResponse{
		Cells: make(map[string]*heatmapCellResponse, len(h.CellMap)),
		Totals: map[string]int{
			"totalRisks":       h.Totals.TotalRisks,
			"appetiteBreaches": h.Totals.AppetiteBreaches,
		},
		TopRisks: toRiskSummaries(h.TopRisks(top)),
	}
	resp.Thresholds.GreenMax = h.Thresholds.GreenMax
	resp.Thresholds.AmberMax = h.Thresholds.AmberMax
	resp.Thresholds.RedMax = h.Thresholds.RedMax

	for _, c := range h.Cells() {
		cell := &heatmapCellResponse{
			Likelihood: c.Likelihood,
			Impact:     c.Impact,
			Score:      c.Score,
			Color:      c.Color.String(),
			Count:      c.Count,
			Risks:      toRiskSummaries(c.Risks),
		}
		resp.Cells[model.MatrixBucket(c.Likelihood, c.Impact)] = cell
		resp.Ordered = append(resp.Ordered, cell)
	}
	return resp
}

type eventResponse struct {
	Type     string         `json:"type"`
	ActorID  string         `json:"actorId"`
	Entity   string         `json:"entity"`
	EntityID string         `json:"entityId"`
	Diff     map[string]any `json:"diff"`
}

func toEventResponse(ev *model.Event) *eventResponse {
	return &eventResponse{
		Type:     ev.Type.String(),
		ActorID:  ev.ActorID,
		Entity:   ev.Entity,
		EntityID: ev.EntityID,
		Diff:     ev.Diff,
	}
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
