package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	server "github.com/neonzero/OpenERM/pkg/controller/http"
	"github.com/neonzero/OpenERM/pkg/domain/types"
	"github.com/neonzero/OpenERM/pkg/repository/memory"
	"github.com/neonzero/OpenERM/pkg/service/event"
	"github.com/neonzero/OpenERM/pkg/service/settings"
	"github.com/neonzero/OpenERM/pkg/usecase"
)

const basePath = "/api/tenants/acme"

type testServer struct {
	srv    *server.Server
	events *event.Recorder
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	appetite := 12.0
	provider := settings.NewProvider(&settings.File{
		Tenants: []settings.TenantEntry{{ID: "acme", Appetite: &appetite}},
	})
	recorder := event.NewRecorder()
	uc := usecase.New(memory.New(),
		usecase.WithSettings(provider),
		usecase.WithEventSink(recorder),
	)
	return &testServer{
		srv:    server.New(uc, server.WithEventLog(recorder)),
		events: recorder,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(v)
	default:
		data, err := json.Marshal(v)
		gt.NoError(t, err).Required()
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(server.ActorHeader, "U001")
	w := httptest.NewRecorder()
	ts.srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &v)).Required()
	return v
}

type riskBody struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	OwnerID            *string  `json:"ownerId"`
	InherentScore      int      `json:"inherentScore"`
	ResidualScore      *int     `json:"residualScore"`
	AppetiteThreshold  *float64 `json:"appetiteThreshold"`
	AppetiteBreached   bool     `json:"appetiteBreached"`
	KeyRisk            bool     `json:"keyRisk"`
	ResidualLikelihood *int     `json:"residualLikelihood"`
	ResidualImpact     *int     `json:"residualImpact"`
}

func (ts *testServer) createRisk(t *testing.T, title string, likelihood, impact int) riskBody {
	t.Helper()
	w := ts.do(t, http.MethodPost, basePath+"/risks", map[string]any{
		"title":              title,
		"inherentLikelihood": likelihood,
		"inherentImpact":     impact,
	})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	return decode[riskBody](t, w)
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(t, http.MethodGet, "/health", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Body.String()).Contains("ok")
}

func TestCreateAndGetRisk(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createRisk(t, "Vendor outage", 3, 4)
	gt.Value(t, created.InherentScore).Equal(12)
	gt.Value(t, created.ResidualScore).NotNil()
	gt.Value(t, *created.ResidualScore).Equal(12)
	gt.Bool(t, created.AppetiteBreached).False()

	w := ts.do(t, http.MethodGet, basePath+"/risks/"+created.ID, nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	got := decode[riskBody](t, w)
	gt.Value(t, got.Title).Equal("Vendor outage")

	t.Run("other tenant cannot see the risk", func(t *testing.T) {
		w := ts.do(t, http.MethodGet, "/api/tenants/other/risks/"+created.ID, nil)
		gt.Value(t, w.Code).Equal(http.StatusNotFound)
	})
}

func TestErrorStatusMapping(t *testing.T) {
	ts := newTestServer(t)
	risk := ts.createRisk(t, "Data centre fire", 2, 5)

	testCases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
	}{
		{"unknown risk", http.MethodGet, basePath + "/risks/missing", nil, http.StatusNotFound},
		{"malformed body", http.MethodPost, basePath + "/risks", "{", http.StatusBadRequest},
		{"title too short", http.MethodPost, basePath + "/risks", map[string]any{"title": "ab", "inherentLikelihood": 1, "inherentImpact": 1}, http.StatusBadRequest},
		{"likelihood out of range", http.MethodPost, basePath + "/risks/" + risk.ID + "/assessments", map[string]any{"likelihood": 6, "impact": 1}, http.StatusBadRequest},
		{"bad boolean filter", http.MethodGet, basePath + "/risks?keyRisk=maybe", nil, http.StatusBadRequest},
		{"key risk flag missing", http.MethodPut, basePath + "/risks/" + risk.ID + "/key-risk", map[string]any{}, http.StatusBadRequest},
		{"unknown treatment", http.MethodPatch, basePath + "/treatments/missing/status", map[string]any{"status": "in_progress"}, http.StatusNotFound},
		{"unknown status value", http.MethodPost, basePath + "/risks/" + risk.ID + "/treatments", map[string]any{"title": "Sprinklers", "status": "done"}, http.StatusBadRequest},
		{"unknown direction", http.MethodPost, basePath + "/risks/" + risk.ID + "/indicators", map[string]any{"name": "Temp", "direction": "sideways"}, http.StatusBadRequest},
		{"reading without value", http.MethodPost, basePath + "/indicators/missing/readings", map[string]any{}, http.StatusBadRequest},
		{"trend window too wide", http.MethodGet, basePath + "/indicators/missing/trend?days=400", nil, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := ts.do(t, tc.method, tc.path, tc.body)
			gt.Value(t, w.Code).Equal(tc.status)
		})
	}
}

func TestSubmitAssessment(t *testing.T) {
	ts := newTestServer(t)
	risk := ts.createRisk(t, "Vendor outage", 2, 2)

	w := ts.do(t, http.MethodPost, basePath+"/risks/"+risk.ID+"/assessments", map[string]any{
		"method":             "qual",
		"likelihood":         4,
		"impact":             4,
		"residualLikelihood": 4,
		"residualImpact":     4,
	})
	gt.Value(t, w.Code).Equal(http.StatusCreated)

	assessment := decode[struct {
		ResidualScore int    `json:"residualScore"`
		MatrixBucket  string `json:"matrixBucket"`
	}](t, w)
	gt.Value(t, assessment.ResidualScore).Equal(16)
	gt.Value(t, assessment.MatrixBucket).Equal("4-4")

	got := decode[riskBody](t, ts.do(t, http.MethodGet, basePath+"/risks/"+risk.ID, nil))
	gt.Value(t, *got.ResidualScore).Equal(16)
	gt.Bool(t, got.AppetiteBreached).True()

	list := decode[struct {
		Items []json.RawMessage `json:"items"`
	}](t, ts.do(t, http.MethodGet, basePath+"/risks/"+risk.ID+"/assessments", nil))
	gt.Array(t, list.Items).Length(1)

	last := ts.events.Last()
	gt.Value(t, last).NotNil()
	gt.Value(t, last.Type).Equal(types.EventRiskAssessed)
}

func TestTreatmentWorkflow(t *testing.T) {
	ts := newTestServer(t)
	risk := ts.createRisk(t, "Phishing", 4, 4)

	w := ts.do(t, http.MethodPost, basePath+"/risks/"+risk.ID+"/treatments", map[string]any{
		"title": "Security awareness training",
		"tasks": []map[string]any{{"title": "Book trainer"}},
	})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	treatment := decode[struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}](t, w)
	gt.Value(t, treatment.Status).Equal("Open")

	statusPath := basePath + "/treatments/" + treatment.ID + "/status"

	t.Run("skipping ahead is a conflict", func(t *testing.T) {
		w := ts.do(t, http.MethodPatch, statusPath, map[string]any{"status": "verified"})
		gt.Value(t, w.Code).Equal(http.StatusConflict)
	})

	for _, status := range []string{"in_progress", "implemented"} {
		w := ts.do(t, http.MethodPatch, statusPath, map[string]any{"status": status})
		gt.Value(t, w.Code).Equal(http.StatusOK)
	}

	w = ts.do(t, http.MethodPatch, statusPath, map[string]any{
		"status":             "verified",
		"residualLikelihood": 2,
		"residualImpact":     2,
	})
	gt.Value(t, w.Code).Equal(http.StatusOK)

	got := decode[riskBody](t, ts.do(t, http.MethodGet, basePath+"/risks/"+risk.ID, nil))
	gt.Value(t, *got.ResidualScore).Equal(4)
	gt.Bool(t, got.AppetiteBreached).False()

	list := decode[struct {
		Items []json.RawMessage `json:"items"`
	}](t, ts.do(t, http.MethodGet, basePath+"/risks/"+risk.ID+"/treatments", nil))
	gt.Array(t, list.Items).Length(1)
}

func TestIndicatorReadings(t *testing.T) {
	ts := newTestServer(t)
	risk := ts.createRisk(t, "Service latency", 3, 3)

	w := ts.do(t, http.MethodPost, basePath+"/risks/"+risk.ID+"/indicators", map[string]any{
		"name":      "p99 latency",
		"direction": "above",
		"threshold": 500,
		"unit":      "ms",
	})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	indicator := decode[struct {
		ID string `json:"id"`
	}](t, w)

	w = ts.do(t, http.MethodPost, basePath+"/indicators/"+indicator.ID+"/readings", map[string]any{"value": 750})
	gt.Value(t, w.Code).Equal(http.StatusCreated)
	gt.Value(t, ts.events.Last().Type).Equal(types.EventIndicatorThresholdBreached)

	trend := decode[struct {
		Items []struct {
			Value float64 `json:"value"`
		} `json:"items"`
	}](t, ts.do(t, http.MethodGet, basePath+"/indicators/"+indicator.ID+"/trend?days=30", nil))
	gt.Array(t, trend.Items).Length(1).Required()
	gt.Value(t, trend.Items[0].Value).Equal(750.0)
}

func TestImportExport(t *testing.T) {
	ts := newTestServer(t)

	csvText := strings.Join([]string{
		"title,description,inherent_likelihood,inherent_impact",
		"Supplier insolvency,Key supplier fails,3,5",
		"Bad row,,9,1",
	}, "\n")

	w := ts.do(t, http.MethodPost, basePath+"/risks/import", csvText)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	result := decode[struct {
		Imported int `json:"imported"`
		Errors   []struct {
			Line    int    `json:"line"`
			Message string `json:"message"`
		} `json:"errors"`
	}](t, w)
	gt.Value(t, result.Imported).Equal(1)
	gt.Array(t, result.Errors).Length(1).Required()
	gt.Value(t, result.Errors[0].Line).Equal(3)

	w = ts.do(t, http.MethodGet, basePath+"/risks/export", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.String(t, w.Header().Get("Content-Type")).Contains("text/csv")
	gt.String(t, w.Body.String()).Contains("Supplier insolvency")
}

func TestHeatmap(t *testing.T) {
	ts := newTestServer(t)
	ts.createRisk(t, "Low", 1, 2)
	ts.createRisk(t, "High", 5, 5)
	ts.createRisk(t, "Medium", 3, 3)

	w := ts.do(t, http.MethodGet, basePath+"/risk-heatmap?top=2", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)

	hm := decode[struct {
		Cells map[string]struct {
			Count int    `json:"count"`
			Color string `json:"color"`
			Risks []struct {
				Title      string `json:"title"`
				Status     string `json:"status"`
				Likelihood int    `json:"likelihood"`
				Impact     int    `json:"impact"`
			} `json:"risks"`
		} `json:"cells"`
		Totals   map[string]int `json:"totals"`
		TopRisks []struct {
			Title string `json:"title"`
		} `json:"topRisks"`
	}](t, w)

	gt.Value(t, len(hm.Cells)).Equal(25)
	gt.Value(t, hm.Cells["5-5"].Count).Equal(1)
	gt.Value(t, hm.Cells["5-5"].Color).Equal("red")
	gt.Array(t, hm.Cells["5-5"].Risks).Length(1).Required()
	gt.Value(t, hm.Cells["5-5"].Risks[0].Title).Equal("High")
	gt.Value(t, hm.Cells["5-5"].Risks[0].Status).Equal("Open")
	gt.Value(t, hm.Cells["5-5"].Risks[0].Likelihood).Equal(5)
	gt.Value(t, hm.Cells["5-5"].Risks[0].Impact).Equal(5)
	gt.Value(t, hm.Cells["1-2"].Color).Equal("green")
	gt.Value(t, hm.Totals["totalRisks"]).Equal(3)
	gt.Array(t, hm.TopRisks).Length(2).Required()
	gt.Value(t, hm.TopRisks[0].Title).Equal("High")
	gt.Value(t, hm.TopRisks[1].Title).Equal("Medium")
}

func TestListRisksAndKeyRisk(t *testing.T) {
	ts := newTestServer(t)
	a := ts.createRisk(t, "Alpha", 1, 1)
	ts.createRisk(t, "Beta", 5, 4)

	w := ts.do(t, http.MethodPut, basePath+"/risks/"+a.ID+"/key-risk", map[string]any{"keyRisk": true})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Bool(t, decode[riskBody](t, w).KeyRisk).True()

	list := decode[struct {
		Items []riskBody `json:"items"`
		Total int        `json:"total"`
	}](t, ts.do(t, http.MethodGet, basePath+"/risks?keyRisk=true", nil))
	gt.Value(t, list.Total).Equal(1)
	gt.Value(t, list.Items[0].Title).Equal("Alpha")

	sorted := decode[struct {
		Items []riskBody `json:"items"`
	}](t, ts.do(t, http.MethodGet, basePath+"/risks?sort=residualScoreDesc", nil))
	gt.Array(t, sorted.Items).Length(2).Required()
	gt.Value(t, sorted.Items[0].Title).Equal("Beta")

	breached := decode[struct {
		Total int `json:"total"`
	}](t, ts.do(t, http.MethodGet, basePath+"/risks?appetiteBreached=true", nil))
	gt.Value(t, breached.Total).Equal(1)
}

func TestEventsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.createRisk(t, "Vendor outage", 2, 2)

	w := ts.do(t, http.MethodGet, basePath+"/events", nil)
	gt.Value(t, w.Code).Equal(http.StatusOK)
	body := decode[struct {
		Events []struct {
			Type    string `json:"type"`
			ActorID string `json:"actorId"`
		} `json:"events"`
	}](t, w)
	gt.Array(t, body.Events).Length(1).Required()
	gt.Value(t, body.Events[0].Type).Equal("risk.created")
	gt.Value(t, body.Events[0].ActorID).Equal("U001")
}

func TestUpdateAppetite(t *testing.T) {
	ts := newTestServer(t)
	risk := ts.createRisk(t, "Vendor lock-in", 3, 3)
	gt.Bool(t, risk.AppetiteBreached).False()

	w := ts.do(t, http.MethodPut, basePath+"/appetite", map[string]any{"appetite": 5})
	gt.Value(t, w.Code).Equal(http.StatusOK)
	gt.Value(t, decode[map[string]int](t, w)["updated"]).Equal(1)

	got := decode[riskBody](t, ts.do(t, http.MethodGet, basePath+"/risks/"+risk.ID, nil))
	gt.Bool(t, got.AppetiteBreached).True()
	gt.Value(t, *got.AppetiteThreshold).Equal(5.0)

	w = ts.do(t, http.MethodPut, basePath+"/appetite", map[string]any{"appetite": 40})
	gt.Value(t, w.Code).Equal(http.StatusBadRequest)
}
