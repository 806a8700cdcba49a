package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const trainingRunTable = "training_run_events"

// Column names for training_run_events.
const (
	colID               = "id"
	colSequence         = "sequence"
	colTimestamp        = "timestamp"
	colRunID            = "run_id"
	colAttempt          = "attempt"
	colSuccess          = "success"
	colErrorMessage     = "error_message"
	colEpochs           = "epochs"
	colSteps            = "steps"
	colTrainRows        = "train_rows"
	colValRows          = "val_rows"
	colFinalLoss        = "final_loss"
	colFinalAccuracy    = "final_accuracy"
	colFinalValLoss     = "final_val_loss"
	colFinalValAccuracy = "final_val_accuracy"
	colDurationMs       = "duration_ms"
	colHistory          = "history"
)

// Every event table starts with id, sequence and timestamp.
var trainingRunColumns = []*schema.Column{
	{Name: colID, Type: field.TypeInt, Increment: true},
	{Name: colSequence, Type: field.TypeInt64, Unique: true},
	{Name: colTimestamp, Type: field.TypeTime},
	{Name: colRunID, Type: field.TypeString},
	{Name: colAttempt, Type: field.TypeInt},
	{Name: colSuccess, Type: field.TypeBool},
	{Name: colErrorMessage, Type: field.TypeString, Default: ""},
	{Name: colEpochs, Type: field.TypeInt},
	{Name: colSteps, Type: field.TypeInt},
	{Name: colTrainRows, Type: field.TypeInt},
	{Name: colValRows, Type: field.TypeInt},
	{Name: colFinalLoss, Type: field.TypeFloat64},
	{Name: colFinalAccuracy, Type: field.TypeFloat64},
	{Name: colFinalValLoss, Type: field.TypeFloat64},
	{Name: colFinalValAccuracy, Type: field.TypeFloat64},
	{Name: colDurationMs, Type: field.TypeInt64},
	{Name: colHistory, Type: field.TypeJSON},
}

var trainingRunEventsTable = &schema.Table{
	Name:       trainingRunTable,
	Columns:    trainingRunColumns,
	PrimaryKey: []*schema.Column{trainingRunColumns[0]},
	Indexes: []*schema.Index{
		{Name: "trainingrunevent_timestamp", Columns: []*schema.Column{trainingRunColumns[2]}},
		{Name: "trainingrunevent_run_id", Columns: []*schema.Column{trainingRunColumns[3]}},
	},
}

// tables are created by migrate on Open.
var tables = []*schema.Table{
	trainingRunEventsTable,
}

var trainingRunSelect = []string{
	colID, colSequence, colTimestamp, colRunID, colAttempt, colSuccess,
	colErrorMessage, colEpochs, colSteps, colTrainRows, colValRows,
	colFinalLoss, colFinalAccuracy, colFinalValLoss, colFinalValAccuracy,
	colDurationMs, colHistory,
}
