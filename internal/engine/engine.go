// Package engine owns the risk model lifecycle: it trains a classifier on a
// synthetic set in the background, retries failed attempts, and serves
// inference once the model is ready.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/cardiofola/internal/classifier"
	"github.com/abhisek/cardiofola/internal/logging"
	"github.com/abhisek/cardiofola/internal/risk"
	"github.com/abhisek/cardiofola/internal/store"
	"github.com/abhisek/cardiofola/internal/synth"
	"github.com/abhisek/cardiofola/internal/trainer"
	"github.com/abhisek/cardiofola/internal/vitals"
)

// Random streams derived from Config.Seed, one per consumer.
const (
	streamData uint64 = iota + 1
	streamWeights
	streamShuffle
)

// Progress reports how far the current training attempt has got.
type Progress struct {
	Attempt int
	Epoch   int
	Epochs  int
	Last    trainer.EpochStats
}

// Fraction returns completed epochs as a value in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Epochs <= 0 {
		return 0
	}
	return min(float64(p.Epoch)/float64(p.Epochs), 1)
}

// Engine is safe for concurrent use.
type Engine struct {
	cfg      Config
	log      *slog.Logger
	train    TrainFunc
	recorder store.EventRepo

	mu       sync.RWMutex
	state    State
	clf      *classifier.Classifier
	task     *Task
	cancel   context.CancelFunc
	lastErr  error
	history  *trainer.History
	progress Progress
	closed   bool
}

// New creates an untrained Engine. Call Initialize to start training.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	e := &Engine{
		cfg: cfg,
		log: logging.New("engine"),
	}
	e.train = e.generateAndTrain
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Initialize starts background training and returns its task. While a run
// is in flight the in-flight task is returned instead of starting another.
// Re-initializing a ready engine closes the current model first.
func (e *Engine) Initialize(ctx context.Context) *Task {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.task != nil && !e.task.finished() {
		return e.task
	}

	task := newTask()
	if e.closed {
		task.finish(ErrClosed)
		return task
	}

	if e.clf != nil {
		if err := e.clf.Close(); err != nil {
			e.log.Warn("closing previous model", "error", err)
		}
		e.clf = nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	runID := uuid.NewString()

	e.task = task
	e.cancel = cancel
	e.state = Training
	e.progress = Progress{Epochs: e.cfg.Trainer.Epochs}

	go func() {
		defer cancel()
		task.finish(e.run(runCtx, runID))
	}()
	return task
}

func (e *Engine) run(ctx context.Context, runID string) error {
	log := e.log.With("run_id", runID)

	for attempt := 1; ; attempt++ {
		e.beginAttempt(attempt)
		log.Info("training attempt started", "attempt", attempt)

		start := time.Now()
		clf, hist, err := e.attempt(ctx, Attempt{
			RunID:   runID,
			Number:  attempt,
			OnEpoch: func(s trainer.EpochStats) { e.epochDone(log, s) },
		})
		e.record(ctx, log, runID, attempt, hist, time.Since(start), err)

		if err == nil {
			if !e.promote(clf, hist) {
				clf.Close()
				return ErrClosed
			}
			final := hist.Final()
			log.Info("model ready",
				"attempt", attempt,
				"loss", final.Loss,
				"accuracy", final.Accuracy,
				"val_accuracy", final.ValAccuracy,
				"duration", time.Since(start))
			return nil
		}

		terr := &TrainingError{Attempt: attempt, Err: err}
		e.fail(terr)
		log.Error("training attempt failed", "attempt", attempt, "error", err)

		if ctx.Err() != nil {
			return terr
		}
		if e.cfg.MaxAttempts > 0 && attempt >= e.cfg.MaxAttempts {
			log.Error("giving up on training", "attempts", attempt)
			return terr
		}

		log.Info("retrying training", "delay", e.cfg.RetryDelay)
		select {
		case <-ctx.Done():
			return errors.Join(terr, ctx.Err())
		case <-time.After(e.cfg.RetryDelay):
		}
	}
}

// attempt runs the train func with panics converted to errors.
func (e *Engine) attempt(ctx context.Context, a Attempt) (clf *classifier.Classifier, hist *trainer.History, err error) {
	defer func() {
		if r := recover(); r != nil {
			clf, err = nil, &PanicError{Value: r}
		}
	}()

	clf, hist, err = e.train(ctx, a)
	if err == nil && clf == nil {
		err = errors.New("train returned no model")
	}
	if err != nil && clf != nil {
		clf.Close()
		clf = nil
	}
	return clf, hist, err
}

func (e *Engine) generateAndTrain(ctx context.Context, a Attempt) (*classifier.Classifier, *trainer.History, error) {
	set := synth.New(e.cfg.Synth, e.source(a.Number, streamData)).Generate()

	clf := classifier.New(e.source(a.Number, streamWeights))
	tr := trainer.New(e.cfg.Trainer, e.source(a.Number, streamShuffle))
	tr.OnEpoch = a.OnEpoch

	hist, err := tr.Fit(ctx, clf, set)
	if err != nil {
		clf.Close()
		return nil, hist, err
	}
	return clf, hist, nil
}

// source returns nil (unseeded) unless a seed is configured.
func (e *Engine) source(attempt int, stream uint64) rand.Source {
	if e.cfg.Seed == 0 {
		return nil
	}
	return rand.NewPCG(e.cfg.Seed, uint64(attempt)<<8|stream)
}

func (e *Engine) beginAttempt(attempt int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Training
	e.progress = Progress{Attempt: attempt, Epochs: e.cfg.Trainer.Epochs}
}

func (e *Engine) epochDone(log *slog.Logger, s trainer.EpochStats) {
	e.mu.Lock()
	e.progress.Epoch = s.Epoch
	e.progress.Last = s
	e.mu.Unlock()

	log.Debug("epoch",
		"epoch", s.Epoch,
		"loss", s.Loss,
		"accuracy", s.Accuracy,
		"val_loss", s.ValLoss,
		"val_accuracy", s.ValAccuracy)
}

// promote installs a trained model. It reports false if the engine was
// closed while training.
func (e *Engine) promote(clf *classifier.Classifier, hist *trainer.History) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.clf = clf
	e.history = hist
	e.state = Ready
	e.lastErr = nil
	return true
}

func (e *Engine) fail(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = Untrained
	e.lastErr = err
}

func (e *Engine) record(ctx context.Context, log *slog.Logger, runID string, attempt int, hist *trainer.History, d time.Duration, runErr error) {
	if e.recorder == nil {
		return
	}

	data := store.TrainingRunEventData{
		RunID:      runID,
		Attempt:    attempt,
		Success:    runErr == nil,
		DurationMs: d.Milliseconds(),
	}
	if runErr != nil {
		data.ErrorMessage = runErr.Error()
	}
	if hist != nil {
		final := hist.Final()
		data.Epochs = len(hist.Epochs)
		data.Steps = hist.Steps
		data.TrainRows = hist.TrainRows
		data.ValRows = hist.ValRows
		data.FinalLoss = final.Loss
		data.FinalAccuracy = final.Accuracy
		data.FinalValLoss = final.ValLoss
		data.FinalValAccuracy = final.ValAccuracy
		for _, s := range hist.Epochs {
			data.History = append(data.History, store.EpochRecord{
				Epoch:       s.Epoch,
				Loss:        s.Loss,
				Accuracy:    s.Accuracy,
				ValLoss:     s.ValLoss,
				ValAccuracy: s.ValAccuracy,
			})
		}
	}

	if err := e.recorder.AppendTrainingRun(context.WithoutCancel(ctx), data); err != nil {
		log.Warn("recording training run", "error", err)
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// IsReady reports whether inference will be served.
func (e *Engine) IsReady() bool {
	return e.State() == Ready
}

// IsTraining reports whether a training attempt is running.
func (e *Engine) IsTraining() bool {
	return e.State() == Training
}

// LastError returns the most recent training failure, cleared on success.
func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// Progress returns a snapshot of the current attempt's progress.
func (e *Engine) Progress() Progress {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.progress
}

// History returns the training history of the live model, or nil.
func (e *Engine) History() *trainer.History {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.clf == nil {
		return nil
	}
	return e.history
}

// Summary describes the live model's layers, or nil when not ready.
func (e *Engine) Summary() []classifier.LayerSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.clf == nil {
		return nil
	}
	return e.clf.Summary()
}

// Infer classifies one record. It returns false when the model is not ready
// or the forward pass fails; the reason is logged.
func (e *Engine) Infer(ctx context.Context, rec vitals.Record) (v risk.Verdict, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("inference panicked", "panic", r)
			v, ok = risk.Verdict{}, false
		}
	}()

	v, err := e.infer(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrNotReady) {
			e.log.Warn("inference requested before model is ready", "state", e.State())
		} else {
			e.log.Error("inference failed", "error", err)
		}
		return risk.Verdict{}, false
	}
	return v, true
}

func (e *Engine) infer(ctx context.Context, rec vitals.Record) (risk.Verdict, error) {
	if err := ctx.Err(); err != nil {
		return risk.Verdict{}, err
	}

	e.mu.RLock()
	clf, state := e.clf, e.state
	e.mu.RUnlock()
	if state != Ready || clf == nil {
		return risk.Verdict{}, ErrNotReady
	}

	f := rec.Features()
	probs, err := clf.Predict(f[:])
	if err != nil {
		return risk.Verdict{}, fmt.Errorf("%w: %w", ErrInference, err)
	}
	v, err := risk.FromProbabilities(probs)
	if err != nil {
		return risk.Verdict{}, fmt.Errorf("%w: %w", ErrInference, err)
	}
	return v, nil
}

// InferMany classifies records concurrently. Verdicts are returned in input
// order; the first failure cancels the rest.
func (e *Engine) InferMany(ctx context.Context, records []vitals.Record) ([]risk.Verdict, error) {
	if !e.IsReady() {
		return nil, ErrNotReady
	}

	out := make([]risk.Verdict, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, rec := range records {
		g.Go(func() error {
			v, err := e.infer(gctx, rec)
			if err != nil {
				return fmt.Errorf("record %d: %w", i, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close stops any training run and disposes the model. Later inference
// returns false and Initialize returns a task failed with ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}

	var err error
	if e.clf != nil {
		err = e.clf.Close()
		e.clf = nil
	}
	e.state = Untrained
	return err
}
