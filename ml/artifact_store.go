package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
)

const (
	bundleClassifierKey = "classifier_model"
	bundleScalerKey     = "scaler"
)

const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"

	ClassifierDecisionTree       = "decision_tree"
	ClassifierLogisticRegression = "logistic_regression"
)

// Store holds the scaler and classifier fitted together. It is never mutated after construction.
type Store struct {
	scaler     Scaler
	classifier Classifier
}

type artifactHeader struct {
	Type         string   `json:"type"`
	FeatureNames []string `json:"feature_names,omitempty"`
}

func NewStore(scaler Scaler, classifier Classifier) (*Store, error) {
	if scaler == nil {
		return nil, &ArtifactLoadError{Err: errors.New("scaler is nil")}
	}
	if classifier == nil {
		return nil, &ArtifactLoadError{Err: errors.New("classifier is nil")}
	}
	return &Store{scaler: scaler, classifier: classifier}, nil
}

func (s *Store) Scaler() Scaler { return s.scaler }

func (s *Store) Classifier() Classifier { return s.classifier }

// LoadFile opens path and decodes the bundle; the file is closed on every path out.
func LoadFile(path string) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ArtifactLoadError{Source: path, Err: err}
	}
	defer file.Close()

	store, err := Load(file)
	if err != nil {
		var loadErr *ArtifactLoadError
		if errors.As(err, &loadErr) {
			loadErr.Source = path
		}
		return nil, err
	}
	return store, nil
}

func Load(r io.Reader) (*Store, error) {
	if r == nil {
		return nil, &ArtifactLoadError{Err: errors.New("nil source")}
	}
	decoder := json.NewDecoder(r)
	var entries map[string]json.RawMessage
	if err := decoder.Decode(&entries); err != nil {
		return nil, &ArtifactLoadError{Err: fmt.Errorf("decode bundle: %w", err)}
	}
	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return nil, &ArtifactLoadError{Err: errors.New("trailing data after bundle")}
	}
	if err := checkBundleKeys(entries); err != nil {
		return nil, &ArtifactLoadError{Err: err}
	}

	scaler, err := decodeScaler(entries[bundleScalerKey])
	if err != nil {
		return nil, &ArtifactLoadError{Err: fmt.Errorf("%s: %w", bundleScalerKey, err)}
	}
	classifier, err := decodeClassifier(entries[bundleClassifierKey])
	if err != nil {
		return nil, &ArtifactLoadError{Err: fmt.Errorf("%s: %w", bundleClassifierKey, err)}
	}
	return NewStore(scaler, classifier)
}

func checkBundleKeys(entries map[string]json.RawMessage) error {
	if entries == nil {
		return errors.New("bundle is not an object")
	}
	for _, key := range []string{bundleClassifierKey, bundleScalerKey} {
		raw, ok := entries[key]
		if !ok || len(raw) == 0 || string(raw) == "null" {
			return fmt.Errorf("bundle is missing %q", key)
		}
	}
	if len(entries) != 2 {
		extra := make([]string, 0, len(entries))
		for key := range entries {
			if key != bundleClassifierKey && key != bundleScalerKey {
				extra = append(extra, key)
			}
		}
		sort.Strings(extra)
		return fmt.Errorf("bundle has unexpected entries %v", extra)
	}
	return nil
}

func decodeScaler(raw json.RawMessage) (Scaler, error) {
	var header artifactHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, err
	}
	if !sameFeatureNames(header.FeatureNames) {
		return nil, fmt.Errorf("fitted on features %v, expected %v", header.FeatureNames, FeatureNames())
	}

	switch header.Type {
	case ScalerStandard:
		scaler := &StandardScaler{}
		if err := json.Unmarshal(raw, scaler); err != nil {
			return nil, err
		}
		if len(scaler.Mean) != NumFeatures || len(scaler.Scale) != NumFeatures {
			return nil, fmt.Errorf("standard scaler expects %d means and scales", NumFeatures)
		}
		return scaler, nil
	case ScalerMinMax:
		scaler := &MinMaxScaler{}
		if err := json.Unmarshal(raw, scaler); err != nil {
			return nil, err
		}
		if len(scaler.Min) != NumFeatures || len(scaler.Max) != NumFeatures {
			return nil, fmt.Errorf("minmax scaler expects %d bounds", NumFeatures)
		}
		return scaler, nil
	default:
		return nil, fmt.Errorf("unsupported scaler type %q", header.Type)
	}
}

func decodeClassifier(raw json.RawMessage) (Classifier, error) {
	var header artifactHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, err
	}
	if header.FeatureNames != nil && !sameFeatureNames(header.FeatureNames) {
		return nil, fmt.Errorf("trained on features %v, expected %v", header.FeatureNames, FeatureNames())
	}

	switch header.Type {
	case ClassifierDecisionTree:
		model := &DecisionTree{}
		if err := json.Unmarshal(raw, model); err != nil {
			return nil, err
		}
		if err := model.validate(); err != nil {
			return nil, err
		}
		return model, nil
	case ClassifierLogisticRegression:
		model := &LogisticRegression{}
		if err := json.Unmarshal(raw, model); err != nil {
			return nil, err
		}
		if err := model.validate(); err != nil {
			return nil, err
		}
		return model, nil
	default:
		return nil, fmt.Errorf("unsupported classifier type %q", header.Type)
	}
}

// SaveBundle writes scaler and classifier in the format Load reads.
func SaveBundle(w io.Writer, scaler Scaler, classifier Classifier) error {
	scalerEntry, err := encodeScaler(scaler)
	if err != nil {
		return err
	}
	classifierEntry, err := encodeClassifier(classifier)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]interface{}{
		bundleScalerKey:     scalerEntry,
		bundleClassifierKey: classifierEntry,
	})
}

func encodeScaler(scaler Scaler) (interface{}, error) {
	header := artifactHeader{FeatureNames: FeatureNames()}
	switch s := scaler.(type) {
	case *StandardScaler:
		header.Type = ScalerStandard
		return struct {
			artifactHeader
			*StandardScaler
		}{header, s}, nil
	case *MinMaxScaler:
		header.Type = ScalerMinMax
		return struct {
			artifactHeader
			*MinMaxScaler
		}{header, s}, nil
	default:
		return nil, fmt.Errorf("cannot serialize scaler %T", scaler)
	}
}

func encodeClassifier(classifier Classifier) (interface{}, error) {
	header := artifactHeader{FeatureNames: FeatureNames()}
	switch c := classifier.(type) {
	case *DecisionTree:
		header.Type = ClassifierDecisionTree
		return struct {
			artifactHeader
			*DecisionTree
		}{header, c}, nil
	case *LogisticRegression:
		header.Type = ClassifierLogisticRegression
		return struct {
			artifactHeader
			*LogisticRegression
		}{header, c}, nil
	default:
		return nil, fmt.Errorf("cannot serialize classifier %T", classifier)
	}
}
