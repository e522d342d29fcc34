// Package interpreter turns free-text inventory commands into store
// operations: normalize, classify, validate, execute, respond.
package interpreter

import (
	"context"
	"strings"
	"time"

	apperrors "inventory-assistant/internal/common/errors"
	"inventory-assistant/internal/common/logger"
	"inventory-assistant/internal/common/metrics"
	"inventory-assistant/internal/common/observability"
	"inventory-assistant/internal/history"
	"inventory-assistant/internal/models"

	"go.opentelemetry.io/otel/attribute"
)

// Interpreter is the single entry point for text commands. It holds no
// state between commands.
type Interpreter struct {
	classifier *Classifier
	validator  *Validator
	executor   *Executor
	history    history.Store
	obs        *observability.Observability
	errHandler *apperrors.Handler
	logger     logger.Logger
	now        func() time.Time
}

type Option func(*Interpreter)

// WithHistory records every executed command in store.
func WithHistory(store history.Store) Option {
	return func(i *Interpreter) { i.history = store }
}

// WithObservability records OTel spans and instruments.
func WithObservability(obs *observability.Observability) Option {
	return func(i *Interpreter) { i.obs = obs }
}

func New(cfg *Config, executor *Executor, log logger.Logger, opts ...Option) *Interpreter {
	log = log.Named("interpreter")
	i := &Interpreter{
		classifier: NewClassifier(),
		validator:  NewValidator(cfg.DefaultUnit, cfg.DefaultLowThreshold),
		executor:   executor,
		history:    history.NoopStore{},
		obs:        &observability.Observability{},
		errHandler: apperrors.NewHandler(log),
		logger:     log,
		now:        cfg.clock(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Execute interprets typed text.
func (i *Interpreter) Execute(ctx context.Context, text string) *Envelope {
	return i.ExecuteFrom(ctx, text, SourceText)
}

// ExecuteFrom interprets text from source ("text" or "voice"). It always
// returns an envelope; unrecognized input yields the help response.
func (i *Interpreter) ExecuteFrom(ctx context.Context, text, source string) *Envelope {
	if source != SourceVoice {
		source = SourceText
	}
	start := time.Now()
	ctx, span := i.obs.StartSpan(ctx, "interpreter.Execute", attribute.String("source", source))
	defer span.End()

	original := strings.TrimSpace(text)
	if original == "" {
		env := FailureEnvelope(apperrors.NewEmptyInputError())
		i.observe(ctx, IntentUnrecognized, env, start)
		return env
	}

	intent, env := i.run(ctx, original)
	span.SetAttributes(
		attribute.String("intent", string(intent)),
		attribute.String("type", env.Type),
	)
	i.observe(ctx, intent, env, start)
	i.record(ctx, models.CommandRecord{
		Text:       original,
		Source:     source,
		Intent:     string(intent),
		Type:       env.Type,
		Success:    env.Success,
		ExecutedAt: i.now(),
	})
	return env
}

func (i *Interpreter) run(ctx context.Context, original string) (Intent, *Envelope) {
	match, err := i.classifier.Classify(Normalize(original))
	if err != nil {
		return match.Intent, FailureEnvelope(err)
	}
	if match.Intent == IntentUnrecognized {
		return match.Intent, HelpEnvelope()
	}

	cmd, err := i.validator.Validate(match)
	if err != nil {
		return match.Intent, FailureEnvelope(err)
	}

	env, err := i.executor.Run(ctx, cmd)
	if err != nil {
		return match.Intent, FailureEnvelope(i.errHandler.Handle(string(match.Intent), err))
	}
	return match.Intent, env
}

// Classify normalizes and classifies text without touching any store.
func (i *Interpreter) Classify(text string) (string, Match, error) {
	normalized := Normalize(strings.TrimSpace(text))
	m, err := i.classifier.Classify(normalized)
	return normalized, m, err
}

func (i *Interpreter) observe(ctx context.Context, intent Intent, env *Envelope, start time.Time) {
	elapsed := time.Since(start)
	metrics.CommandsExecuted.WithLabelValues(string(intent), env.Type).Inc()
	metrics.CommandDuration.WithLabelValues(string(intent)).Observe(elapsed.Seconds())
	i.obs.RecordCommand(ctx, string(intent), env.Type, elapsed)

	i.logger.Info("command executed", map[string]interface{}{
		"intent":     string(intent),
		"type":       env.Type,
		"success":    env.Success,
		"durationMs": elapsed.Milliseconds(),
	})
}

func (i *Interpreter) record(ctx context.Context, rec models.CommandRecord) {
	if err := i.history.Record(ctx, rec); err != nil {
		i.logger.Warn("failed to record command history", map[string]interface{}{
			"error": err,
		})
	}
}
