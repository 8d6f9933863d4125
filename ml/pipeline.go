package ml

import (
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

const DefaultFrequency = 1

const (
	maxAge      = 100
	maxHeightCm = 250.0
	maxWeightKg = 200.0
)

// Input carries the raw request values. A nil pointer means the caller left the field unset.
type Input struct {
	Age       *int
	HeightCm  *float64
	WeightKg  *float64
	Frequency *int
}

type Prediction struct {
	Level    ObesityLevel
	Features FeatureVector
}

// Pipeline turns raw inputs into an ObesityLevel. It holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	store  *Store
	logger *zap.Logger
	cache  *lru.Cache[FeatureVector, ObesityLevel]
}

type Option func(*Pipeline) error

func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// WithCache memoizes up to size results keyed by the assembled feature vector.
func WithCache(size int) Option {
	return func(p *Pipeline) error {
		if size <= 0 {
			return nil
		}
		cache, err := lru.New[FeatureVector, ObesityLevel](size)
		if err != nil {
			return fmt.Errorf("create prediction cache: %w", err)
		}
		p.cache = cache
		return nil
	}
}

func NewPipeline(store *Store, opts ...Option) (*Pipeline, error) {
	if store == nil {
		return nil, errors.New("artifact store is required")
	}
	p := &Pipeline{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Pipeline) Predict(in Input) (Prediction, error) {
	features, err := AssembleFeatures(in)
	if err != nil {
		p.logger.Debug("rejected prediction input", zap.String("kind", "validation"), zap.Error(err))
		return Prediction{}, err
	}

	if p.cache != nil {
		if level, ok := p.cache.Get(features); ok {
			return Prediction{Level: level, Features: features}, nil
		}
	}

	level, err := p.classify(features)
	if err != nil {
		p.logger.Error("prediction contract violation",
			zap.String("kind", "contract"),
			zap.Int("age", features.Age),
			zap.Float64("height_m", features.Height),
			zap.Float64("weight_kg", features.Weight),
			zap.Int("fcvc", features.FCVC),
			zap.Error(err),
		)
		return Prediction{}, err
	}

	if p.cache != nil {
		p.cache.Add(features, level)
	}
	return Prediction{Level: level, Features: features}, nil
}

func (p *Pipeline) classify(features FeatureVector) (ObesityLevel, error) {
	scaled, err := p.store.Scaler().Transform(features)
	if err != nil {
		var transformErr *TransformError
		if errors.As(err, &transformErr) {
			return 0, err
		}
		return 0, &TransformError{Err: err}
	}
	if len(scaled) != NumFeatures {
		return 0, &TransformError{Err: fmt.Errorf("scaler returned %d values, expected %d", len(scaled), NumFeatures)}
	}

	index, err := p.store.Classifier().Predict(scaled)
	if err != nil {
		return 0, &TransformError{Err: fmt.Errorf("classifier: %w", err)}
	}
	return LevelFromIndex(index)
}

// AssembleFeatures validates in, converts height to meters and orders the fields as the scaler expects.
func AssembleFeatures(in Input) (FeatureVector, error) {
	if in.Age == nil {
		return FeatureVector{}, &MissingInputError{Field: "age"}
	}
	if in.HeightCm == nil {
		return FeatureVector{}, &MissingInputError{Field: "height"}
	}
	if in.WeightKg == nil {
		return FeatureVector{}, &MissingInputError{Field: "weight"}
	}
	frequency := DefaultFrequency
	if in.Frequency != nil {
		frequency = *in.Frequency
	}

	age, heightCm, weightKg := *in.Age, *in.HeightCm, *in.WeightKg
	switch {
	case age < 0 || age > maxAge:
		return FeatureVector{}, &InvalidInputError{Field: "age", Reason: fmt.Sprintf("must be between 0 and %d", maxAge)}
	case !inOpenClosed(heightCm, maxHeightCm):
		return FeatureVector{}, &InvalidInputError{Field: "height", Reason: fmt.Sprintf("must be greater than 0 and at most %.0f cm", maxHeightCm)}
	case !inOpenClosed(weightKg, maxWeightKg):
		return FeatureVector{}, &InvalidInputError{Field: "weight", Reason: fmt.Sprintf("must be greater than 0 and at most %.0f kg", maxWeightKg)}
	case frequency < 1 || frequency > 3:
		return FeatureVector{}, &InvalidInputError{Field: "frequency", Reason: "must be 1, 2 or 3"}
	}

	return FeatureVector{
		Age:    age,
		Height: CentimetersToMeters(heightCm),
		Weight: weightKg,
		FCVC:   frequency,
	}, nil
}

func inOpenClosed(v, max float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v > 0 && v <= max
}
