package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"obesitylevel/db"
	"obesitylevel/ml"
	"obesitylevel/monitoring"
)

const invalidInputMessage = "Please enter valid values for height, weight, and age."

// Predictor 推理管道
type Predictor interface {
	Predict(in ml.Input) (ml.Prediction, error)
}

// PredictionStore 预测审计日志
type PredictionStore interface {
	SavePrediction(ctx context.Context, record *db.Record) error
	RecentPredictions(ctx context.Context, limit int) ([]db.Record, error)
	CountByLevel(ctx context.Context) (map[string]int, error)
}

// Publisher 预测事件推送
type Publisher interface {
	PublishPrediction(event monitoring.PredictionMessage) error
}

// Handler HTTP处理器
type Handler struct {
	predictor Predictor
	store     PredictionStore
	publisher Publisher
	logger    *zap.Logger
}

type HandlerOption func(*Handler)

func WithStore(store PredictionStore) HandlerOption {
	return func(h *Handler) { h.store = store }
}

func WithPublisher(publisher Publisher) HandlerOption {
	return func(h *Handler) { h.publisher = publisher }
}

func WithLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler 创建处理器，store和publisher可选
func NewHandler(predictor Predictor, opts ...HandlerOption) *Handler {
	h := &Handler{predictor: predictor, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// PredictRequest 预测请求。缺失的字段保持为nil
type PredictRequest struct {
	Age       *int     `json:"age"`
	HeightCm  *float64 `json:"height_cm"`
	WeightKg  *float64 `json:"weight_kg"`
	Frequency *int     `json:"vegetable_frequency,omitempty"`
}

type FeaturesResponse struct {
	Age     int     `json:"age"`
	HeightM float64 `json:"height_m"`
	Weight  float64 `json:"weight_kg"`
	FCVC    int     `json:"fcvc"`
}

// PredictResponse 预测响应
type PredictResponse struct {
	ID         string           `json:"id,omitempty"`
	Level      string           `json:"level"`
	ClassIndex int              `json:"class_index"`
	Features   FeaturesResponse `json:"features"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

type LevelResponse struct {
	Index int    `json:"index"`
	Level string `json:"level"`
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("GET /api/levels", h.handleLevels)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/predictions", h.handlePredictions)
	mux.HandleFunc("GET /api/predictions/stats", h.handlePredictionStats)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels := ml.Levels()
	response := make([]LevelResponse, len(levels))
	for i, level := range levels {
		response[i] = LevelResponse{Index: level.Index(), Level: level.String()}
	}
	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	start := time.Now()
	prediction, err := h.predictor.Predict(ml.Input{
		Age:       req.Age,
		HeightCm:  req.HeightCm,
		WeightKg:  req.WeightKg,
		Frequency: req.Frequency,
	})
	elapsed := time.Since(start)
	if err != nil {
		h.writePredictError(w, r, err, elapsed)
		return
	}
	monitoring.RecordPrediction(monitoring.OutcomeOK, prediction.Level.String(), elapsed)

	features := prediction.Features
	record := &db.Record{
		Age:        features.Age,
		HeightCm:   features.Height * 100,
		WeightKg:   features.Weight,
		FCVC:       features.FCVC,
		ClassIndex: prediction.Level.Index(),
		Level:      prediction.Level.String(),
	}
	if h.store != nil {
		if err := h.store.SavePrediction(r.Context(), record); err != nil {
			h.logger.Warn("failed to persist prediction",
				zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
			record.ID = ""
		}
	}
	if h.publisher != nil {
		event := monitoring.PredictionMessage{
			ID:         record.ID,
			Age:        record.Age,
			HeightCm:   record.HeightCm,
			WeightKg:   record.WeightKg,
			FCVC:       record.FCVC,
			ClassIndex: record.ClassIndex,
			Level:      record.Level,
		}
		if err := h.publisher.PublishPrediction(event); err != nil {
			h.logger.Warn("failed to publish prediction", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, PredictResponse{
		ID:         record.ID,
		Level:      record.Level,
		ClassIndex: record.ClassIndex,
		Features: FeaturesResponse{
			Age:     features.Age,
			HeightM: features.Height,
			Weight:  features.Weight,
			FCVC:    features.FCVC,
		},
	})
}

func (h *Handler) writePredictError(w http.ResponseWriter, r *http.Request, err error, elapsed time.Duration) {
	var missing *ml.MissingInputError
	var invalid *ml.InvalidInputError
	switch {
	case errors.As(err, &missing):
		monitoring.RecordPrediction(monitoring.OutcomeValidationError, "", elapsed)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: invalidInputMessage, Field: missing.Field})
	case errors.As(err, &invalid):
		monitoring.RecordPrediction(monitoring.OutcomeValidationError, "", elapsed)
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: invalid.Error(), Field: invalid.Field})
	case ml.IsContract(err):
		monitoring.RecordPrediction(monitoring.OutcomeContractError, "", elapsed)
		h.logger.Error("model contract violation",
			zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "prediction service failure"})
	default:
		h.logger.Error("prediction failed",
			zap.String("request_id", GetRequestID(r.Context())), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}

func (h *Handler) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "prediction log is disabled"})
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 || l > 1000 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 1000", Field: "limit"})
			return
		}
		limit = l
	}

	records, err := h.store.RecentPredictions(r.Context(), limit)
	if err != nil {
		h.logger.Error("query predictions failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":  records,
		"count": len(records),
	})
}

// StatsResponse 各等级预测次数，包含计数为0的等级
type StatsResponse struct {
	Total  int            `json:"total"`
	Levels map[string]int `json:"levels"`
}

func (h *Handler) handlePredictionStats(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "prediction log is disabled"})
		return
	}

	counts, err := h.store.CountByLevel(r.Context())
	if err != nil {
		h.logger.Error("count predictions failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := StatsResponse{Levels: make(map[string]int, ml.NumLevels)}
	for _, level := range ml.Levels() {
		response.Levels[level.String()] = counts[level.String()]
		response.Total += counts[level.String()]
	}
	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
