package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// eventRepo implements EventRepo backed by ent's SQL driver and the global
// sequence counter.
type eventRepo struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

func (r *eventRepo) AppendTrainingRun(ctx context.Context, data TrainingRunEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	history := data.History
	if history == nil {
		history = []EpochRecord{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(trainingRunTable).
		Columns(
			colSequence, colTimestamp, colRunID, colAttempt, colSuccess,
			colErrorMessage, colEpochs, colSteps, colTrainRows, colValRows,
			colFinalLoss, colFinalAccuracy, colFinalValLoss, colFinalValAccuracy,
			colDurationMs, colHistory,
		).
		Values(
			seqNum, time.Now().UTC(), data.RunID, data.Attempt, data.Success,
			data.ErrorMessage, data.Epochs, data.Steps, data.TrainRows, data.ValRows,
			data.FinalLoss, data.FinalAccuracy, data.FinalValLoss, data.FinalValAccuracy,
			data.DurationMs, string(historyJSON),
		).
		Query()

	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save training run event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryTrainingRuns(ctx context.Context, opts QueryOpts) ([]TrainingRunEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(trainingRunSelect...).
		From(entsql.Table(trainingRunTable)).
		OrderBy(entsql.Desc(colSequence))

	if opts.After > 0 {
		sel.Where(entsql.GT(colSequence, opts.After))
	}
	if opts.Before > 0 {
		sel.Where(entsql.LT(colSequence, opts.Before))
	}
	if !opts.From.IsZero() {
		sel.Where(entsql.GTE(colTimestamp, opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		sel.Where(entsql.LTE(colTimestamp, opts.To.UTC()))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	return r.scanTrainingRuns(ctx, sel)
}

func (r *eventRepo) GetTrainingRun(ctx context.Context, id int) (*TrainingRunEventRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(trainingRunSelect...).
		From(entsql.Table(trainingRunTable)).
		Where(entsql.EQ(colID, id)).
		Limit(1)

	records, err := r.scanTrainingRuns(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (r *eventRepo) scanTrainingRuns(ctx context.Context, sel *entsql.Selector) ([]TrainingRunEventRecord, error) {
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := r.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query training run events: %w", err)
	}
	defer rows.Close()

	var records []TrainingRunEventRecord
	for rows.Next() {
		var (
			rec     TrainingRunEventRecord
			history string
		)
		err := rows.Scan(
			&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.RunID, &rec.Attempt, &rec.Success,
			&rec.ErrorMessage, &rec.Epochs, &rec.Steps, &rec.TrainRows, &rec.ValRows,
			&rec.FinalLoss, &rec.FinalAccuracy, &rec.FinalValLoss, &rec.FinalValAccuracy,
			&rec.DurationMs, &history,
		)
		if err != nil {
			return nil, fmt.Errorf("scan training run event: %w", err)
		}
		if history != "" {
			if err := json.Unmarshal([]byte(history), &rec.History); err != nil {
				return nil, fmt.Errorf("unmarshal history for event %d: %w", rec.ID, err)
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate training run events: %w", err)
	}
	return records, nil
}
