package ml

// NumFeatures is the arity every fitted Scaler and Classifier must agree on.
const NumFeatures = 4

// FeatureVector holds one request's inputs in the order the scaler was fitted on.
// Height is in meters.
type FeatureVector struct {
	Age    int
	Height float64
	Weight float64
	FCVC   int
}

type ScaledVector []float64

func (f FeatureVector) Values() [NumFeatures]float64 {
	return [NumFeatures]float64{
		float64(f.Age),
		f.Height,
		f.Weight,
		float64(f.FCVC),
	}
}

func FeatureNames() []string {
	return []string{
		"Age",
		"Height",
		"Weight",
		"FCVC",
	}
}

func CentimetersToMeters(cm float64) float64 {
	return cm / 100.0
}

func sameFeatureNames(names []string) bool {
	expected := FeatureNames()
	if len(names) != len(expected) {
		return false
	}
	for i := range expected {
		if names[i] != expected[i] {
			return false
		}
	}
	return true
}
