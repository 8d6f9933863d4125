package ml

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"strconv"
	"strings"
)

const LabelColumn = "NObeyesdad"

// LoadTrainingCSV reads rows of the obesity dataset. Height is already in meters there.
// Age and FCVC are rounded because the published dataset stores them as synthetic floats.
func LoadTrainingCSV(r io.Reader) ([]FeatureVector, []int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	required := append(FeatureNames(), LabelColumn)
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return nil, nil, fmt.Errorf("missing column %q", name)
		}
	}

	var features []FeatureVector
	var labels []int
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		values := make(map[string]float64, NumFeatures)
		for _, name := range FeatureNames() {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[columns[name]]), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("line %d column %s: %w", line, name, err)
			}
			values[name] = v
		}
		level, err := ParseObesityLevel(record[columns[LabelColumn]])
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: %w", line, err)
		}

		features = append(features, FeatureVector{
			Age:    int(math.Round(values["Age"])),
			Height: values["Height"],
			Weight: values["Weight"],
			FCVC:   clampInt(int(math.Round(values["FCVC"])), 1, 3),
		})
		labels = append(labels, level.Index())
	}
	if len(features) == 0 {
		return nil, nil, errors.New("no training rows")
	}
	return features, labels, nil
}

func Matrix(features []FeatureVector) [][]float64 {
	out := make([][]float64, len(features))
	for i, f := range features {
		values := f.Values()
		out[i] = values[:]
	}
	return out
}

func SplitDataset(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

// Accuracy scores an already-scaled test set.
func Accuracy(model Classifier, testX [][]float64, testY []int) float64 {
	if len(testX) == 0 {
		return 0
	}
	var correct int
	for i, row := range testX {
		label, err := model.Predict(ScaledVector(row))
		if err != nil {
			continue
		}
		if label == testY[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(testX))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
