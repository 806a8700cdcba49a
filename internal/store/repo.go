package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// EpochRecord is one row of a run's per-epoch history.
type EpochRecord struct {
	Epoch       int     `json:"epoch"`
	Loss        float64 `json:"loss"`
	Accuracy    float64 `json:"accuracy"`
	ValLoss     float64 `json:"val_loss"`
	ValAccuracy float64 `json:"val_accuracy"`
}

// TrainingRunEventData captures one model initialization attempt. Only
// training metadata is kept; vitals and weights are never stored.
type TrainingRunEventData struct {
	RunID            string
	Attempt          int
	Success          bool
	ErrorMessage     string
	Epochs           int
	Steps            int
	TrainRows        int
	ValRows          int
	FinalLoss        float64
	FinalAccuracy    float64
	FinalValLoss     float64
	FinalValAccuracy float64
	DurationMs       int64
	History          []EpochRecord
}

// TrainingRunEventRecord is a stored training run event.
type TrainingRunEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	TrainingRunEventData
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	// AppendTrainingRun records a training attempt.
	AppendTrainingRun(ctx context.Context, data TrainingRunEventData) error

	// QueryTrainingRuns returns runs newest first.
	QueryTrainingRuns(ctx context.Context, opts QueryOpts) ([]TrainingRunEventRecord, error)

	// GetTrainingRun returns a single run by ID, or nil if it doesn't exist.
	GetTrainingRun(ctx context.Context, id int) (*TrainingRunEventRecord, error)
}
