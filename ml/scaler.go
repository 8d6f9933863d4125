package ml

import (
	"errors"
	"fmt"
	"math"
)

type StandardScaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

func (s *StandardScaler) Fit(features [][]float64) error {
	if len(features) == 0 {
		return errors.New("features is empty")
	}
	cols := len(features[0])
	mean := make([]float64, cols)
	scale := make([]float64, cols)
	for _, row := range features {
		if len(row) != cols {
			return errors.New("ragged feature matrix")
		}
		for j, v := range row {
			mean[j] += v
		}
	}
	rows := float64(len(features))
	for j := range mean {
		mean[j] /= rows
	}
	for _, row := range features {
		for j, v := range row {
			d := v - mean[j]
			scale[j] += d * d
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / rows)
		if scale[j] == 0 {
			scale[j] = 1
		}
	}
	s.Mean = mean
	s.Scale = scale
	return nil
}

func (s *StandardScaler) Transform(features FeatureVector) (ScaledVector, error) {
	if err := checkArity("mean", s.Mean); err != nil {
		return nil, err
	}
	if err := checkArity("scale", s.Scale); err != nil {
		return nil, err
	}
	values := features.Values()
	out := make(ScaledVector, NumFeatures)
	for i, v := range values {
		scale := s.Scale[i]
		if scale == 0 {
			scale = 1
		}
		out[i] = (v - s.Mean[i]) / scale
	}
	return out, nil
}

type MinMaxScaler struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

func (s *MinMaxScaler) Fit(features [][]float64) error {
	if len(features) == 0 {
		return errors.New("features is empty")
	}
	cols := len(features[0])
	mins := append([]float64(nil), features[0]...)
	maxs := append([]float64(nil), features[0]...)
	for _, row := range features[1:] {
		if len(row) != cols {
			return errors.New("ragged feature matrix")
		}
		for j, v := range row {
			if v < mins[j] {
				mins[j] = v
			}
			if v > maxs[j] {
				maxs[j] = v
			}
		}
	}
	s.Min = mins
	s.Max = maxs
	return nil
}

func (s *MinMaxScaler) Transform(features FeatureVector) (ScaledVector, error) {
	if err := checkArity("min", s.Min); err != nil {
		return nil, err
	}
	if err := checkArity("max", s.Max); err != nil {
		return nil, err
	}
	values := features.Values()
	out := make(ScaledVector, NumFeatures)
	for i, v := range values {
		out[i] = NormalizeFeature(v, s.Min[i], s.Max[i])
	}
	return out, nil
}

func NormalizeFeature(value, min, max float64) float64 {
	if max == min {
		return 0
	}
	return (value - min) / (max - min)
}

func checkArity(name string, params []float64) error {
	if len(params) != NumFeatures {
		return &TransformError{Err: fmt.Errorf("scaler %s has %d values, expected %d", name, len(params), NumFeatures)}
	}
	return nil
}
