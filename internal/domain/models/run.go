package models

import "time"

// ProcessedEntry is one line of the processed ledger.
type ProcessedEntry struct {
	Identity    string
	Timestamp   time.Time
	Fingerprint string
}

// RunReport summarizes one pipeline run; stored in MongoDB when an archive
// database is configured.
type RunReport struct {
	Subject    string    `bson:"subject" json:"subject"`
	Archive    string    `bson:"archive" json:"archive"`
	Products   int       `bson:"products" json:"products"`
	Outcome    string    `bson:"outcome" json:"outcome"`
	StartedAt  time.Time `bson:"started_at" json:"started_at"`
	FinishedAt time.Time `bson:"finished_at" json:"finished_at"`
}
