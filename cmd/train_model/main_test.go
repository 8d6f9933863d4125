package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"obesitylevel/ml"
)

func TestNewTrainer(t *testing.T) {
	model, err := newTrainer(ml.ClassifierDecisionTree, 4)
	require.NoError(t, err)
	require.NoError(t, model.Train([][]float64{{0, 0, 0, 0}, {1, 1, 1, 1}}, []int{0, 3}))

	label, err := model.Predict(ml.ScaledVector{1, 1, 1, 1})
	require.NoError(t, err)
	assert.Equal(t, 3, label)

	_, err = newTrainer(ml.ClassifierLogisticRegression, 4)
	assert.Error(t, err)
}

func TestScaleRows(t *testing.T) {
	scaler := &ml.MinMaxScaler{}
	rows := [][]float64{{20, 1.5, 50, 1}, {40, 1.9, 90, 3}}
	require.NoError(t, scaler.Fit(rows))

	scaled, err := scaleRows(scaler, rows)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, scaled[0])
	assert.Equal(t, []float64{1, 1, 1, 1}, scaled[1])
}
