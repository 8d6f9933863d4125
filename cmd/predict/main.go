package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"obesitylevel/logging"
	"obesitylevel/ml"
)

func main() {
	bundlePath := flag.String("bundle", "./models/obesity_bundle.json", "artifact bundle path")
	age := flag.Int("age", 0, "age in years (0-100)")
	height := flag.Float64("height", 0, "height in centimeters")
	weight := flag.Float64("weight", 0, "weight in kilograms")
	frequency := flag.Int("frequency", ml.DefaultFrequency, "frequency of vegetable consumption (1-3)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := "warn"
	if *verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Development: true})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	// only flags the user actually passed count as present
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	var input ml.Input
	if set["age"] {
		input.Age = age
	}
	if set["height"] {
		input.HeightCm = height
	}
	if set["weight"] {
		input.WeightKg = weight
	}
	if set["frequency"] {
		input.Frequency = frequency
	}

	store, err := ml.LoadFile(*bundlePath)
	if err != nil {
		logger.Error("failed to load artifact bundle", zap.Error(err))
		os.Exit(1)
	}
	pipeline, err := ml.NewPipeline(store, ml.WithLogger(logger))
	if err != nil {
		logger.Error("failed to build pipeline", zap.Error(err))
		os.Exit(1)
	}

	prediction, err := pipeline.Predict(input)
	switch {
	case ml.IsValidation(err):
		fmt.Fprintf(os.Stderr, "Please enter valid values for height, weight, and age (%v).\n", err)
		os.Exit(2)
	case err != nil:
		logger.Error("prediction failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Printf("The predicted obesity level is %s.\n", prediction.Level)
}
