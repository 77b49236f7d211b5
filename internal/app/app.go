package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"NewsChecker/internal/config"
	"NewsChecker/internal/credibility"
	"NewsChecker/internal/infrastructure/ml"
	"NewsChecker/internal/infrastructure/model"
	"NewsChecker/internal/infrastructure/onnx"
	"NewsChecker/internal/infrastructure/parser"
	"NewsChecker/internal/infrastructure/scheduler"
	"NewsChecker/internal/infrastructure/storage"
	"NewsChecker/internal/infrastructure/telegram"
	"NewsChecker/internal/logging"
	"NewsChecker/internal/ports"
	"NewsChecker/internal/server"
	"NewsChecker/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	model    *credibility.Model
	analyzer *usecase.Analyzer
	monitor  *usecase.Monitor
	closers  []io.Closer
}

// New builds the application. A model that fails to load is logged and left
// unready so the server can still report health; a configured database that
// cannot be opened is an error.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	m, closer := LoadModel(cfg, baseLogger.With("component", "model"))
	a.model = m
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	var repository ports.AnalysisRepository
	if cfg.Database.DSN != "" {
		repo, err := storage.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open history store: %w", err)
		}
		a.closers = append(a.closers, repo)
		repository = repo
	}

	extractor := parser.NewStrategyExtractor(
		parser.NewDefaultRegistry(),
		cfg.Extractor,
		&http.Client{Timeout: cfg.Extractor.Timeout},
		baseLogger.With("component", "extractor"),
	)

	a.analyzer = usecase.NewAnalyzer(usecase.AnalyzerDeps{
		Pipeline:   credibility.NewPipeline(baseLogger.With("component", "pipeline")),
		Model:      m,
		Extractor:  extractor,
		Repository: repository,
		Logger:     baseLogger.With("component", "analyzer"),
	})

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg)
	}

	a.monitor = usecase.NewMonitor(usecase.MonitorDeps{
		Analyzer:    a.analyzer,
		Repository:  repository,
		Notifier:    notifier,
		URLs:        cfg.Monitor.URLs,
		Concurrency: cfg.Monitor.Concurrency,
		Location:    cfg.Monitor.Location(),
		Logger:      baseLogger.With("component", "monitor"),
	})

	return a, nil
}

// Analyzer exposes the scoring use case to the CLI.
func (a *Application) Analyzer() *usecase.Analyzer {
	return a.analyzer
}

// Serve runs the HTTP server and, when a watchlist is configured, the monitor schedule.
func (a *Application) Serve(ctx context.Context) error {
	if len(a.cfg.Monitor.URLs) > 0 {
		stop, err := a.startSchedule(ctx)
		if err != nil {
			return err
		}
		defer stop()
	}

	srv := server.New(a.cfg.Server, a.analyzer, a.logger.With("component", "server"))
	return srv.Run(ctx)
}

// Watch runs the monitor schedule until ctx is cancelled.
func (a *Application) Watch(ctx context.Context) error {
	if len(a.cfg.Monitor.URLs) == 0 {
		return errors.New("monitor has no URLs configured")
	}
	stop, err := a.startSchedule(ctx)
	if err != nil {
		return err
	}
	defer stop()

	<-ctx.Done()
	return nil
}

func (a *Application) startSchedule(ctx context.Context) (func(), error) {
	driver, err := scheduler.NewCronScheduler(a.cfg.Monitor.CronExpression, a.cfg.Monitor.Location())
	if err != nil {
		return nil, err
	}
	sched := usecase.NewScheduler(driver, a.monitor, a.logger.With("component", "scheduler"))
	if err := sched.Start(ctx); err != nil {
		return nil, fmt.Errorf("start monitor schedule: %w", err)
	}
	a.logger.Info("monitor scheduled",
		"cron", a.cfg.Monitor.CronExpression,
		"urls", len(a.cfg.Monitor.URLs),
		"next", driver.Next(time.Now()))

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sched.Stop(stopCtx)
	}, nil
}

// RunMonitor performs a single monitor pass, as the scheduled job would.
func (a *Application) RunMonitor(ctx context.Context) (usecase.Summary, error) {
	return a.monitor.RunOnce(ctx, time.Now().In(a.cfg.Monitor.Location()))
}

// Close releases the model runtime and database handles.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// LoadModel builds the classifier backend named in cfg.Model.Backend. Failures
// are logged and produce a partially or fully unloaded Model. The returned
// closer, when non-nil, releases backend resources.
func LoadModel(cfg config.Config, logger *slog.Logger) (*credibility.Model, io.Closer) {
	backend := cfg.Model.Backend
	if backend == "" {
		backend = config.BackendLocal
	}
	m := &credibility.Model{Info: credibility.ModelInfo{Backend: backend}}

	if backend == config.BackendLocal {
		local, err := model.Load(cfg.Model.Path)
		if err != nil {
			logger.Error("load model failed", "path", cfg.Model.Path, "error", err)
			return m, nil
		}
		m.Encoder, m.Classifier = local.Encoder, local.Classifier
		m.Info.VocabularySize = local.Encoder.VocabularySize()
		m.Info.HasIDF = local.Encoder.HasIDF()
		logger.Info("model loaded", "backend", backend, "vocabulary_size", m.Info.VocabularySize)
		return m, nil
	}

	enc, err := model.LoadEncoder(cfg.Model.Path)
	if err != nil {
		logger.Error("load vectorizer failed", "path", cfg.Model.Path, "error", err)
		return m, nil
	}
	m.Encoder = enc
	m.Info.VocabularySize = enc.VocabularySize()
	m.Info.HasIDF = enc.HasIDF()

	switch backend {
	case config.BackendRemote:
		if cfg.ML.InferenceURL == "" {
			logger.Error("remote backend selected without inference URL")
			return m, nil
		}
		m.Classifier = ml.NewClient(cfg.ML)
	case config.BackendONNX:
		clf, err := onnx.Load(cfg.Model.ONNX, enc.VocabularySize())
		if err != nil {
			logger.Error("load onnx model failed", "path", cfg.Model.ONNX.ModelPath, "error", err)
			return m, nil
		}
		m.Classifier = clf
		logger.Info("model loaded", "backend", backend, "vocabulary_size", m.Info.VocabularySize)
		return m, clf
	default:
		logger.Error("unknown model backend", "backend", backend)
		return m, nil
	}

	logger.Info("model loaded", "backend", backend, "vocabulary_size", m.Info.VocabularySize)
	return m, nil
}
