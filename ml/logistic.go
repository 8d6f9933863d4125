package ml

import (
	"errors"
	"fmt"
	"math"
)

// LogisticRegression is a fitted multinomial (softmax) linear classifier.
// Weights has one row per entry in Classes.
type LogisticRegression struct {
	Classes    []int       `json:"classes"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

func (m *LogisticRegression) Predict(features ScaledVector) (int, error) {
	if len(m.Classes) == 0 {
		return 0, errors.New("model not trained")
	}
	if len(m.Weights) != len(m.Classes) || len(m.Intercepts) != len(m.Classes) {
		return 0, errors.New("weights, intercepts and classes differ in length")
	}
	best := -1
	bestLogit := math.Inf(-1)
	for k, weights := range m.Weights {
		if len(weights) != len(features) {
			return 0, fmt.Errorf("class %d has %d weights, got %d features", m.Classes[k], len(weights), len(features))
		}
		logit := m.Intercepts[k]
		for j, w := range weights {
			logit += w * features[j]
		}
		if logit > bestLogit {
			bestLogit = logit
			best = k
		}
	}
	if best < 0 {
		return 0, errors.New("no finite class score")
	}
	return m.Classes[best], nil
}

// Probabilities returns the softmax distribution aligned with Classes.
func (m *LogisticRegression) Probabilities(features ScaledVector) ([]float64, error) {
	if len(m.Classes) == 0 {
		return nil, errors.New("model not trained")
	}
	if len(m.Weights) != len(m.Classes) || len(m.Intercepts) != len(m.Classes) {
		return nil, errors.New("weights, intercepts and classes differ in length")
	}
	logits := make([]float64, len(m.Weights))
	maxLogit := math.Inf(-1)
	for k, weights := range m.Weights {
		if len(weights) != len(features) {
			return nil, fmt.Errorf("class %d has %d weights, got %d features", m.Classes[k], len(weights), len(features))
		}
		logits[k] = m.Intercepts[k]
		for j, w := range weights {
			logits[k] += w * features[j]
		}
		maxLogit = math.Max(maxLogit, logits[k])
	}
	var sum float64
	for k := range logits {
		logits[k] = math.Exp(logits[k] - maxLogit)
		sum += logits[k]
	}
	for k := range logits {
		logits[k] /= sum
	}
	return logits, nil
}

func (m *LogisticRegression) validate() error {
	if len(m.Classes) == 0 {
		return errors.New("logistic regression has no classes")
	}
	if len(m.Weights) != len(m.Classes) || len(m.Intercepts) != len(m.Classes) {
		return errors.New("logistic regression weights, intercepts and classes differ in length")
	}
	for _, weights := range m.Weights {
		if len(weights) != NumFeatures {
			return fmt.Errorf("logistic regression expects %d features, weights have %d", NumFeatures, len(weights))
		}
	}
	return nil
}
