package engine

import (
	"context"
	"log/slog"

	"github.com/abhisek/cardiofola/internal/classifier"
	"github.com/abhisek/cardiofola/internal/store"
	"github.com/abhisek/cardiofola/internal/trainer"
)

// Attempt describes one training attempt handed to a TrainFunc.
type Attempt struct {
	RunID  string
	Number int

	// OnEpoch reports progress back to the engine. Never nil.
	OnEpoch func(trainer.EpochStats)
}

// TrainFunc generates a training set and trains a fresh classifier.
// On error the func owns cleanup of anything it allocated.
type TrainFunc func(ctx context.Context, a Attempt) (*classifier.Classifier, *trainer.History, error)

// Option configures an Engine.
type Option func(*Engine)

// WithTrainFunc replaces the built-in generate-and-train step.
func WithTrainFunc(fn TrainFunc) Option {
	return func(e *Engine) {
		e.train = fn
	}
}

// WithRecorder records every training attempt to the event store.
func WithRecorder(repo store.EventRepo) Option {
	return func(e *Engine) {
		e.recorder = repo
	}
}

// WithLogger sets the logger. Default: logging.New("engine").
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}
