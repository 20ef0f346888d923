package pedagogue

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/pedagogue/pkg/alert"
	"github.com/soundprediction/pedagogue/pkg/checkpoint"
	"github.com/soundprediction/pedagogue/pkg/compose"
	"github.com/soundprediction/pedagogue/pkg/config"
	"github.com/soundprediction/pedagogue/pkg/enrich"
	"github.com/soundprediction/pedagogue/pkg/explorer"
	"github.com/soundprediction/pedagogue/pkg/nlp"
)

// LanguageModels holds specialized oracle clients for the pipeline stages.
// Any nil field falls back to the Analyzer client, so a single client can
// drive the whole pipeline.
type LanguageModels struct {
	Analyzer   nlp.Client
	Classifier nlp.Client
	Resolver   nlp.Client
	Enricher   nlp.Client
	Designer   nlp.Client
	Composer   nlp.Client
}

func (m *LanguageModels) fillDefaults() error {
	if m.Analyzer == nil {
		return fmt.Errorf("analyzer oracle client is required")
	}
	if m.Classifier == nil {
		m.Classifier = m.Analyzer
	}
	if m.Resolver == nil {
		m.Resolver = m.Analyzer
	}
	if m.Enricher == nil {
		m.Enricher = m.Analyzer
	}
	if m.Designer == nil {
		m.Designer = m.Analyzer
	}
	if m.Composer == nil {
		m.Composer = m.Analyzer
	}
	return nil
}

// each returns the distinct clients, for cleanup.
func (m *LanguageModels) each() []nlp.Client {
	seen := make(map[nlp.Client]bool)
	var clients []nlp.Client
	for _, c := range []nlp.Client{m.Analyzer, m.Classifier, m.Resolver, m.Enricher, m.Designer, m.Composer} {
		if c != nil && !seen[c] {
			seen[c] = true
			clients = append(clients, c)
		}
	}
	return clients
}

// Client is the main implementation of the Generator interface.
type Client struct {
	analyzer RequestAnalyzer
	explorer TreeExplorer
	enricher TreeEnricher
	designer TreeDesigner
	composer NarrativeComposer

	languageModels LanguageModels
	checkpoints    *checkpoint.Manager
	tracker        *nlp.ParquetCallTracker
	alerter        alert.Alerter
	config         *config.Config
	logger         *slog.Logger
}

// NewClient builds the full pipeline from configuration: one oracle client
// per stage role, each wrapped with retries, an optional circuit breaker,
// and optional parquet call tracking.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var tracker *nlp.ParquetCallTracker
	if cfg.Telemetry.ParquetPath != "" {
		t, err := nlp.NewCallTracker(cfg.Telemetry.ParquetPath)
		if err != nil {
			logger.Warn("call tracking disabled", "error", err)
		} else {
			tracker = t
		}
	}

	alerter := alert.FromConfig(cfg.Alert)

	buildOracle := func(role string) (nlp.Client, error) {
		mc := cfg.ModelFor(role)
		client, err := nlp.NewClient(nlp.Config{
			Provider:    nlp.ProviderID(mc.Provider),
			Model:       mc.Model,
			APIKey:      mc.APIKey,
			BaseURL:     mc.BaseURL,
			Temperature: &mc.Temperature,
			MaxTokens:   &mc.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("building %s oracle: %w", role, err)
		}

		retryCfg := nlp.DefaultRetryConfig()
		if cfg.Oracle.MaxRetries > 0 {
			retryCfg.MaxRetries = cfg.Oracle.MaxRetries
		}
		wrapped := nlp.Client(nlp.NewRetryClient(client, retryCfg))

		if cfg.CircuitBreaker.Enabled {
			wrapped = nlp.NewCircuitBreakerClient(wrapped, cfg.CircuitBreaker, alerter, role)
		}
		if tracker != nil {
			wrapped = nlp.NewTrackingClient(wrapped, tracker)
		}
		return wrapped, nil
	}

	var models LanguageModels
	var err error
	if models.Analyzer, err = buildOracle("default"); err != nil {
		return nil, err
	}
	if models.Classifier, err = buildOracle("classifier"); err != nil {
		return nil, err
	}
	if models.Resolver, err = buildOracle("resolver"); err != nil {
		return nil, err
	}
	if models.Enricher, err = buildOracle("enricher"); err != nil {
		return nil, err
	}
	if models.Designer, err = buildOracle("designer"); err != nil {
		return nil, err
	}
	if models.Composer, err = buildOracle("composer"); err != nil {
		return nil, err
	}

	client, err := NewClientWithModels(models, cfg, logger)
	if err != nil {
		return nil, err
	}
	client.tracker = tracker
	return client, nil
}

// NewClientWithModels builds the pipeline around caller-supplied oracle
// clients. Useful when a caller manages its own client wrapping or wants a
// single client for every stage.
func NewClientWithModels(models LanguageModels, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := models.fillDefaults(); err != nil {
		return nil, err
	}

	classifier := explorer.NewClassifier(models.Classifier, logger)
	resolver := explorer.NewMemoResolver(explorer.NewResolver(models.Resolver, logger))

	exp := explorer.New(classifier, resolver, logger, explorer.Options{
		MaxDepth:    cfg.Explorer.MaxDepth,
		MaxNodes:    cfg.Explorer.MaxNodes,
		Concurrency: cfg.Explorer.Concurrency,
		WallClock:   time.Duration(cfg.Explorer.WallClockSeconds) * time.Second,
	})

	var checkpoints *checkpoint.Manager
	if cfg.Checkpoint.Enabled {
		m, err := checkpoint.NewManager(cfg.Checkpoint.Dir)
		if err != nil {
			return nil, fmt.Errorf("initializing checkpoints: %w", err)
		}
		checkpoints = m
	}

	return &Client{
		analyzer:       explorer.NewAnalyzer(models.Analyzer, logger),
		explorer:       exp,
		enricher:       enrich.NewMathEnricher(models.Enricher, logger, cfg.Enrich.Concurrency),
		designer:       enrich.NewVisualDesigner(models.Designer, logger),
		composer:       compose.NewComposer(models.Composer, logger),
		languageModels: models,
		checkpoints:    checkpoints,
		alerter:        alert.FromConfig(cfg.Alert),
		config:         cfg,
		logger:         logger,
	}, nil
}

// Checkpoints returns the checkpoint manager, or nil when checkpointing is
// disabled.
func (c *Client) Checkpoints() *checkpoint.Manager {
	return c.checkpoints
}

// Close releases oracle clients and flushes pending telemetry.
func (c *Client) Close() error {
	var firstErr error
	for _, client := range c.languageModels.each() {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if c.tracker != nil {
		if err := c.tracker.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
