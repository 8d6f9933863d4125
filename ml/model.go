package ml

// Scaler applies a transform fitted before deployment. Implementations must be safe for concurrent use.
type Scaler interface {
	Transform(features FeatureVector) (ScaledVector, error)
}

// Classifier maps a scaled vector to a class index. Implementations must be safe for concurrent use.
type Classifier interface {
	Predict(features ScaledVector) (int, error)
}

// Trainer is implemented by classifiers the offline trainer can fit.
type Trainer interface {
	Classifier
	Train(features [][]float64, labels []int) error
}
