package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome 预测结果类别
type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeValidationError Outcome = "validation_error"
	OutcomeContractError   Outcome = "contract_error"
)

var (
	predictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "obesity",
		Name:      "predictions_total",
		Help:      "Prediction requests partitioned by outcome.",
	}, []string{"outcome"})
	predictionLevels = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "obesity",
		Name:      "predicted_levels_total",
		Help:      "Successful predictions partitioned by obesity level.",
	}, []string{"level"})
	predictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "obesity",
		Name:      "prediction_duration_seconds",
		Help:      "Time spent in the inference pipeline.",
		Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
	})
	artifactChanges = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "obesity",
		Name:      "artifact_changes_total",
		Help:      "Changes to the artifact bundle on disk since the process loaded it.",
	})
)

func init() {
	prometheus.MustRegister(predictionsTotal, predictionLevels, predictionDuration, artifactChanges)
}

// RecordPrediction 记录一次预测。level仅在成功时有意义
func RecordPrediction(outcome Outcome, level string, elapsed time.Duration) {
	predictionsTotal.WithLabelValues(string(outcome)).Inc()
	predictionDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeOK && level != "" {
		predictionLevels.WithLabelValues(level).Inc()
	}
}

// RecordArtifactChange 记录模型文件变更
func RecordArtifactChange() {
	artifactChanges.Inc()
}
