package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obesitylevel/db"
	"obesitylevel/ml"
	"obesitylevel/ml/mltest"
	"obesitylevel/monitoring"
)

type fakeStore struct {
	mu      sync.Mutex
	records []db.Record
	err     error
}

func (f *fakeStore) SavePrediction(ctx context.Context, record *db.Record) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	record.ID = "pred-1"
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeStore) CountByLevel(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int)
	for _, record := range f.records {
		counts[record.Level]++
	}
	return counts, f.err
}

func (f *fakeStore) RecentPredictions(ctx context.Context, limit int) ([]db.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], f.err
}

type fakePublisher struct {
	events []monitoring.PredictionMessage
}

func (f *fakePublisher) PublishPrediction(event monitoring.PredictionMessage) error {
	f.events = append(f.events, event)
	return nil
}

func newTestPipeline(t *testing.T, classifier ml.Classifier) *ml.Pipeline {
	t.Helper()
	store, err := ml.NewStore(mltest.IdentityScaler{}, classifier)
	require.NoError(t, err)
	pipeline, err := ml.NewPipeline(store)
	require.NoError(t, err)
	return pipeline
}

func newTestRouter(t *testing.T, classifier ml.Classifier, opts ...HandlerOption) http.Handler {
	t.Helper()
	handler := NewHandler(newTestPipeline(t, classifier), opts...)
	return NewRouter(DefaultServerConfig(), handler, nil, nil)
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestHealthHandler(t *testing.T) {
	router := newTestRouter(t, mltest.FixedClassifier{Label: 1})
	rr := doRequest(router, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestHandlePredict(t *testing.T) {
	store := &fakeStore{}
	publisher := &fakePublisher{}
	router := newTestRouter(t, mltest.FixedClassifier{Label: 2}, WithStore(store), WithPublisher(publisher))

	rr := doRequest(router, http.MethodPost, "/api/predict",
		`{"age":30,"height_cm":170,"weight_kg":70,"vegetable_frequency":2}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Overweight Level I", resp.Level)
	assert.Equal(t, 2, resp.ClassIndex)
	assert.Equal(t, "pred-1", resp.ID)
	assert.InDelta(t, 1.70, resp.Features.HeightM, 1e-9)
	assert.Equal(t, 2, resp.Features.FCVC)

	require.Len(t, store.records, 1)
	assert.Equal(t, 170.0, store.records[0].HeightCm)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, "Overweight Level I", publisher.events[0].Level)
}

func TestHandlePredictDefaultFrequency(t *testing.T) {
	router := newTestRouter(t, mltest.FixedClassifier{Label: 0})

	rr := doRequest(router, http.MethodPost, "/api/predict", `{"age":19,"height_cm":181,"weight_kg":55}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Features.FCVC)
	assert.Equal(t, "Insufficient Weight", resp.Level)
	assert.Empty(t, resp.ID)
}

func TestHandlePredictRejectsInput(t *testing.T) {
	store := &fakeStore{}
	router := newTestRouter(t, mltest.FixedClassifier{Label: 1}, WithStore(store))

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing age", `{"height_cm":170,"weight_kg":70}`, "age"},
		{"missing height", `{"age":30,"weight_kg":70}`, "height"},
		{"missing weight", `{"age":30,"height_cm":170}`, "weight"},
		{"frequency out of range", `{"age":30,"height_cm":170,"weight_kg":70,"vegetable_frequency":5}`, "frequency"},
		{"malformed", `{"age":"thirty"`, ""},
		{"fractional age", `{"age":30.5,"height_cm":170,"weight_kg":70}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(router, http.MethodPost, "/api/predict", tt.body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.field, resp.Field)
			assert.NotEmpty(t, resp.Error)
		})
	}
	assert.Empty(t, store.records)
}

func TestHandlePredictContractError(t *testing.T) {
	router := newTestRouter(t, mltest.FixedClassifier{Label: 9})

	rr := doRequest(router, http.MethodPost, "/api/predict", `{"age":30,"height_cm":170,"weight_kg":70}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "prediction service failure")
}

func TestHandlePredictStoreFailureStillAnswers(t *testing.T) {
	store := &fakeStore{err: errors.New("disk full")}
	router := newTestRouter(t, mltest.FixedClassifier{Label: 4}, WithStore(store))

	rr := doRequest(router, http.MethodPost, "/api/predict", `{"age":40,"height_cm":165,"weight_kg":98}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp PredictResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Obesity Type I", resp.Level)
	assert.Empty(t, resp.ID)
}

func TestHandleLevels(t *testing.T) {
	router := newTestRouter(t, mltest.FixedClassifier{Label: 1})
	rr := doRequest(router, http.MethodGet, "/api/levels", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var levels []LevelResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &levels))
	require.Len(t, levels, 7)
	assert.Equal(t, "Insufficient Weight", levels[0].Level)
	assert.Equal(t, "Obesity Type III", levels[6].Level)
}

func TestHandlePredictions(t *testing.T) {
	disabled := newTestRouter(t, mltest.FixedClassifier{Label: 1})
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(disabled, http.MethodGet, "/api/predictions", "").Code)

	store := &fakeStore{}
	router := newTestRouter(t, mltest.FixedClassifier{Label: 1}, WithStore(store))
	require.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/api/predict", `{"age":30,"height_cm":170,"weight_kg":70}`).Code)

	rr := doRequest(router, http.MethodGet, "/api/predictions?limit=5", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var payload struct {
		Data  []db.Record `json:"data"`
		Count int         `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &payload))
	assert.Equal(t, 1, payload.Count)
	assert.Equal(t, "Normal Weight", payload.Data[0].Level)

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/api/predictions?limit=0", "").Code)
}

func TestHandlePredictionStats(t *testing.T) {
	disabled := newTestRouter(t, mltest.FixedClassifier{Label: 1})
	assert.Equal(t, http.StatusServiceUnavailable, doRequest(disabled, http.MethodGet, "/api/predictions/stats", "").Code)

	store := &fakeStore{}
	router := newTestRouter(t, mltest.FixedClassifier{Label: 1}, WithStore(store))
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, doRequest(router, http.MethodPost, "/api/predict", `{"age":30,"height_cm":170,"weight_kg":70}`).Code)
	}

	rr := doRequest(router, http.MethodGet, "/api/predictions/stats", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var stats StatsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Total)
	assert.Len(t, stats.Levels, ml.NumLevels)
	assert.Equal(t, 2, stats.Levels["Normal Weight"])
	assert.Equal(t, 0, stats.Levels["Obesity Type III"])

	failing := newTestRouter(t, mltest.FixedClassifier{Label: 1}, WithStore(&fakeStore{err: errors.New("locked")}))
	assert.Equal(t, http.StatusInternalServerError, doRequest(failing, http.MethodGet, "/api/predictions/stats", "").Code)
}

type lenientPredictor struct{}

func (lenientPredictor) Predict(in ml.Input) (ml.Prediction, error) {
	return ml.Prediction{
		Level:    ml.NormalWeight,
		Features: ml.FeatureVector{Age: 30, Height: 1.7, Weight: 70, FCVC: 1},
	}, nil
}

func TestHandlePredictRecordsHeightFromFeatures(t *testing.T) {
	store := &fakeStore{}
	router := NewRouter(DefaultServerConfig(), NewHandler(lenientPredictor{}, WithStore(store)), nil, nil)

	rr := doRequest(router, http.MethodPost, "/api/predict", `{"age":30,"weight_kg":70}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, store.records, 1)
	assert.InDelta(t, 170.0, store.records[0].HeightCm, 1e-9)
}

func TestMethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, mltest.FixedClassifier{Label: 1})
	rr := doRequest(router, http.MethodGet, "/api/predict", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, mltest.FixedClassifier{Label: 1})
	doRequest(router, http.MethodPost, "/api/predict", `{"age":30,"height_cm":170,"weight_kg":70}`)

	rr := doRequest(router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "obesity_predictions_total")
}
