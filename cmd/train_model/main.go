package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"obesitylevel/logging"
	"obesitylevel/ml"
)

type fitter interface {
	ml.Scaler
	Fit(features [][]float64) error
}

func main() {
	dataPath := flag.String("data", "./data/ObesityDataSet.csv", "training CSV with Age, Height, Weight, FCVC and NObeyesdad columns")
	modelPath := flag.String("model_path", "./models/obesity_bundle.json", "bundle output path")
	scalerType := flag.String("scaler", ml.ScalerStandard, "scaler type: standard or minmax")
	modelType := flag.String("model", ml.ClassifierDecisionTree, "classifier type")
	maxDepth := flag.Int("max_depth", 10, "max tree depth")
	testRatio := flag.Float64("test_ratio", 0.2, "test ratio")
	seed := flag.Int64("seed", 42, "shuffle seed")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: "info", Development: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	var scaler fitter
	switch *scalerType {
	case ml.ScalerStandard:
		scaler = &ml.StandardScaler{}
	case ml.ScalerMinMax:
		scaler = &ml.MinMaxScaler{}
	default:
		logger.Fatal("unsupported scaler", zap.String("scaler", *scalerType))
	}

	file, err := os.Open(*dataPath)
	if err != nil {
		logger.Fatal("failed to open training data", zap.Error(err))
	}
	features, labels, err := ml.LoadTrainingCSV(file)
	file.Close()
	if err != nil {
		logger.Fatal("failed to read training data", zap.Error(err))
	}
	logger.Info("training data loaded", zap.Int("rows", len(features)))

	trainX, trainY, testX, testY := ml.SplitDataset(ml.Matrix(features), labels, *testRatio, *seed)

	if err := scaler.Fit(trainX); err != nil {
		logger.Fatal("failed to fit scaler", zap.Error(err))
	}
	scaledTrain, err := scaleRows(scaler, trainX)
	if err != nil {
		logger.Fatal("failed to scale training set", zap.Error(err))
	}
	scaledTest, err := scaleRows(scaler, testX)
	if err != nil {
		logger.Fatal("failed to scale test set", zap.Error(err))
	}

	model, err := newTrainer(*modelType, *maxDepth)
	if err != nil {
		logger.Fatal("unsupported model", zap.String("model", *modelType), zap.Error(err))
	}
	if err := model.Train(scaledTrain, trainY); err != nil {
		logger.Fatal("failed to train model", zap.Error(err))
	}
	logger.Info("model trained",
		zap.String("model", *modelType),
		zap.Float64("train_accuracy", ml.Accuracy(model, scaledTrain, trainY)),
		zap.Float64("test_accuracy", ml.Accuracy(model, scaledTest, testY)),
	)

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		logger.Fatal("failed to create model dir", zap.Error(err))
	}
	out, err := os.Create(*modelPath)
	if err != nil {
		logger.Fatal("failed to create bundle", zap.Error(err))
	}
	if err := ml.SaveBundle(out, scaler, model); err != nil {
		out.Close()
		logger.Fatal("failed to write bundle", zap.Error(err))
	}
	if err := out.Close(); err != nil {
		logger.Fatal("failed to close bundle", zap.Error(err))
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

// newTrainer 只有决策树支持离线训练，逻辑回归参数需从外部导入
func newTrainer(kind string, maxDepth int) (ml.Trainer, error) {
	switch kind {
	case ml.ClassifierDecisionTree:
		return ml.NewDecisionTree(maxDepth), nil
	default:
		return nil, fmt.Errorf("cannot train %q", kind)
	}
}

// scaleRows runs raw rows through the fitted scaler the same way the server will.
func scaleRows(scaler ml.Scaler, rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled, err := scaler.Transform(ml.FeatureVector{
			Age:    int(row[0]),
			Height: row[1],
			Weight: row[2],
			FCVC:   int(row[3]),
		})
		if err != nil {
			return nil, err
		}
		out[i] = scaled
	}
	return out, nil
}
