// Package mltest provides stub scalers and classifiers for pipeline tests.
package mltest

import (
	"sync"

	"obesitylevel/ml"
)

// IdentityScaler returns the raw feature values unchanged.
type IdentityScaler struct{}

func (IdentityScaler) Transform(features ml.FeatureVector) (ml.ScaledVector, error) {
	values := features.Values()
	return ml.ScaledVector(values[:]), nil
}

// RecordingScaler behaves like IdentityScaler and remembers every vector it saw.
type RecordingScaler struct {
	mu    sync.Mutex
	calls []ml.FeatureVector
}

func (s *RecordingScaler) Transform(features ml.FeatureVector) (ml.ScaledVector, error) {
	s.mu.Lock()
	s.calls = append(s.calls, features)
	s.mu.Unlock()
	return IdentityScaler{}.Transform(features)
}

func (s *RecordingScaler) Calls() []ml.FeatureVector {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ml.FeatureVector(nil), s.calls...)
}

// FuncScaler adapts a function to ml.Scaler.
type FuncScaler func(ml.FeatureVector) (ml.ScaledVector, error)

func (f FuncScaler) Transform(features ml.FeatureVector) (ml.ScaledVector, error) {
	return f(features)
}

// FixedClassifier always predicts Label, or fails with Err when set.
type FixedClassifier struct {
	Label int
	Err   error
}

func (c FixedClassifier) Predict(ml.ScaledVector) (int, error) {
	return c.Label, c.Err
}

// RecordingClassifier behaves like FixedClassifier and remembers every vector it saw.
type RecordingClassifier struct {
	Label int

	mu    sync.Mutex
	calls []ml.ScaledVector
}

func (c *RecordingClassifier) Predict(features ml.ScaledVector) (int, error) {
	c.mu.Lock()
	c.calls = append(c.calls, append(ml.ScaledVector(nil), features...))
	c.mu.Unlock()
	return c.Label, nil
}

func (c *RecordingClassifier) Calls() []ml.ScaledVector {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ml.ScaledVector(nil), c.calls...)
}

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

// Input builds a fully populated ml.Input.
func Input(age int, heightCm, weightKg float64, frequency int) ml.Input {
	return ml.Input{
		Age:       Int(age),
		HeightCm:  Float(heightCm),
		WeightKg:  Float(weightKg),
		Frequency: Int(frequency),
	}
}
