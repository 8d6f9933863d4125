package ml

import (
	"strings"
	"testing"
)

const sampleCSV = `Gender,Age,Height,Weight,family_history_with_overweight,FAVC,FCVC,NObeyesdad
Female,21,1.62,64,yes,no,2,Normal_Weight
Male,23,1.8,77,yes,no,2,Normal_Weight
Male,27,1.8,87,no,no,3,Overweight_Level_I
Female,22.8,1.55,49.9,no,yes,2.45,Insufficient_Weight
Male,29.6,1.75,118,yes,yes,1.2,Obesity_Type_II
`

func TestLoadTrainingCSV(t *testing.T) {
	features, labels, err := LoadTrainingCSV(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(features) != 5 || len(labels) != 5 {
		t.Fatalf("expected 5 rows, got %d features and %d labels", len(features), len(labels))
	}
	if labels[2] != int(OverweightLevelI) || labels[4] != int(ObesityTypeII) {
		t.Fatalf("unexpected labels: %v", labels)
	}
	synthetic := features[3]
	if synthetic.Age != 23 || synthetic.FCVC != 2 {
		t.Fatalf("expected rounded age and FCVC, got %+v", synthetic)
	}
	if features[4].FCVC != 1 {
		t.Fatalf("expected FCVC 1, got %d", features[4].FCVC)
	}
}

func TestLoadTrainingCSVErrors(t *testing.T) {
	tests := map[string]string{
		"missing column": "Age,Height,Weight,NObeyesdad\n21,1.62,64,Normal_Weight\n",
		"bad number":     "Age,Height,Weight,FCVC,NObeyesdad\nabc,1.62,64,2,Normal_Weight\n",
		"bad label":      "Age,Height,Weight,FCVC,NObeyesdad\n21,1.62,64,2,Chubby\n",
		"no rows":        "Age,Height,Weight,FCVC,NObeyesdad\n",
		"empty":          "",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := LoadTrainingCSV(strings.NewReader(input)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSplitDatasetDeterministic(t *testing.T) {
	features := make([][]float64, 10)
	labels := make([]int, 10)
	for i := range features {
		features[i] = []float64{float64(i)}
		labels[i] = i
	}
	trainX, trainY, testX, testY := SplitDataset(features, labels, 0.2, 7)
	if len(trainX) != 8 || len(testX) != 2 || len(trainY) != 8 || len(testY) != 2 {
		t.Fatalf("unexpected split sizes %d/%d", len(trainX), len(testX))
	}
	againX, _, _, _ := SplitDataset(features, labels, 0.2, 7)
	for i := range trainX {
		if trainX[i][0] != againX[i][0] {
			t.Fatal("expected identical split for identical seed")
		}
	}
}

func TestAccuracy(t *testing.T) {
	model := &DecisionTree{Nodes: []TreeNode{
		{FeatureIdx: 0, Threshold: 0.5, LeftChild: 1, RightChild: 2},
		{IsLeaf: true, ClassLabel: 0},
		{IsLeaf: true, ClassLabel: 1},
	}}
	acc := Accuracy(model, [][]float64{{0}, {1}, {0}, {1}}, []int{0, 1, 1, 1})
	if acc != 0.75 {
		t.Fatalf("expected accuracy 0.75, got %f", acc)
	}
}
