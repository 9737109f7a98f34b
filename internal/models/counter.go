package models

// Counter is a named monotonic sequence. Mutated only via an atomic
// increment-and-fetch in the counter collection.
type Counter struct {
	ID            string `bson:"_id" json:"id"`
	SequenceValue int64  `bson:"sequence_value" json:"sequence_value"`
}

// CounterJobNumber is the counter id backing job number generation.
const CounterJobNumber = "job_number"
