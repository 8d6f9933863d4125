package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"obesitylevel/config"
	"obesitylevel/db"
	qhttp "obesitylevel/http"
	"obesitylevel/logging"
	"obesitylevel/ml"
	"obesitylevel/monitoring"
)

func main() {
	// Look for config in root even if run from cmd/
	configPath := "config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = filepath.Join("..", "config.yaml")
	}

	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// 2. Load artifacts; without them nothing can be served
	store, err := ml.LoadFile(cfg.Model.BundlePath)
	if err != nil {
		logger.Fatal("failed to load artifact bundle", zap.String("path", cfg.Model.BundlePath), zap.Error(err))
	}
	logger.Info("artifact bundle loaded",
		zap.String("path", cfg.Model.BundlePath),
		zap.String("scaler", typeName(store.Scaler())),
		zap.String("classifier", typeName(store.Classifier())),
	)

	pipeline, err := ml.NewPipeline(store, ml.WithLogger(logger), ml.WithCache(cfg.Model.CacheSize))
	if err != nil {
		logger.Fatal("failed to build pipeline", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []qhttp.HandlerOption{qhttp.WithLogger(logger)}

	// 3. Prediction log is optional
	if cfg.Database.Path != "" {
		predictions, err := db.Open(cfg.Database.Path)
		if err != nil {
			logger.Fatal("failed to open database", zap.String("path", cfg.Database.Path), zap.Error(err))
		}
		defer predictions.Close()
		opts = append(opts, qhttp.WithStore(predictions))
		logger.Info("prediction log enabled", zap.String("path", cfg.Database.Path))
	}

	feed := monitoring.NewPredictionFeed(logger, cfg.Http.AllowedOrigins)
	go feed.Run(ctx)
	opts = append(opts, qhttp.WithPublisher(feed))

	if cfg.Model.Watch {
		err := ml.WatchArtifact(ctx, cfg.Model.BundlePath, logger, func(e fsnotify.Event) {
			monitoring.RecordArtifactChange()
			logger.Warn("artifact bundle changed on disk; restart to serve it",
				zap.String("path", e.Name), zap.String("op", e.Op.String()))
		})
		if err != nil {
			logger.Warn("artifact watcher disabled", zap.Error(err))
		}
	}

	// 4. Start HTTP server
	serverConfig := qhttp.ServerConfig{
		Port:           cfg.Http.Port,
		Timeout:        cfg.Http.Timeout,
		AllowedOrigins: cfg.Http.AllowedOrigins,
		MaxBodyBytes:   cfg.Http.MaxBodyBytes,
	}
	router := qhttp.NewRouter(serverConfig, qhttp.NewHandler(pipeline, opts...), feed, logger)
	server := qhttp.NewServer(serverConfig, router, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// 5. Handle graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}

	logger.Info("exiting")
}

func typeName(v interface{}) string {
	switch v.(type) {
	case *ml.StandardScaler:
		return ml.ScalerStandard
	case *ml.MinMaxScaler:
		return ml.ScalerMinMax
	case *ml.DecisionTree:
		return ml.ClassifierDecisionTree
	case *ml.LogisticRegression:
		return ml.ClassifierLogisticRegression
	default:
		return "custom"
	}
}
