// package models defines the data model for the classifier store
package models

import "time"

// Classifier is a trained model. Implementations are immutable once derived.
type Classifier interface {
	Labels() []string // Labels returns the labels the classifier can assign
}

// Pipeline turns raw documents into features. Its state defines the feature
// space a [Trainer] is expressed in, so both always travel together.
type Pipeline interface {
	FeatureCount() int // FeatureCount returns the number of features known to the pipeline
}

// Trainer holds incremental training state.
type Trainer interface {
	CurrentModel(pipe Pipeline) (Classifier, error) // CurrentModel derives a classifier from the current state
	Instances() int                                 // Instances returns the number of training instances seen
}

// Factory creates the collaborators for a model identity on first use.
type Factory interface {
	NewTrainer() Trainer
	NewPipeline() Pipeline
}

// ModelRecord is one row of the classifiers table.
//
// A nil Payload means the row was bootstrapped but training never completed.
type ModelRecord struct {
	ID      int64
	Payload []byte
}

// Trained reports whether the record holds a committed payload.
func (r ModelRecord) Trained() bool {
	return r.Payload != nil
}

// RecordInfo summarizes a stored record without decoding it.
type RecordInfo struct {
	ID          int64 `json:"id"`
	HasPayload  bool  `json:"has_payload"`
	PayloadSize int   `json:"payload_size"`
}

// Payload is the decoded form of a record's payload column.
type Payload struct {
	Model   Classifier
	Trainer Trainer
	Pipe    Pipeline
}

// CheckoutHandle is an exclusive training session for one model identity.
//
// The caller owns Trainer and Pipe until the handle is checked in.
type CheckoutHandle struct {
	ID           int64
	SessionID    string
	Trainer      Trainer
	Pipe         Pipeline
	Bootstrapped bool
	CheckedOutAt time.Time

	closed bool
}

// NewCheckoutHandle creates an open handle.
func NewCheckoutHandle(id int64, sessionID string, trainer Trainer, pipe Pipeline, bootstrapped bool) *CheckoutHandle {
	return &CheckoutHandle{
		ID:           id,
		SessionID:    sessionID,
		Trainer:      trainer,
		Pipe:         pipe,
		Bootstrapped: bootstrapped,
		CheckedOutAt: time.Now(),
	}
}

// Closed reports whether the handle has been checked in.
func (h *CheckoutHandle) Closed() bool {
	return h.closed
}

// Close marks the handle as checked in.
func (h *CheckoutHandle) Close() {
	h.closed = true
}

// SnapshotState describes the outcome of a lockless read.
type SnapshotState int

const (
	// SnapshotUnavailable covers both an unknown identity and a bootstrapped
	// identity that has never been checked in.
	SnapshotUnavailable SnapshotState = iota
	// SnapshotTrained means the last committed classifier was returned.
	SnapshotTrained
)

func (s SnapshotState) String() string {
	switch s {
	case SnapshotTrained:
		return "trained"
	default:
		return "unavailable"
	}
}

// Snapshot is the result of a lockless read.
type Snapshot struct {
	ID    int64
	State SnapshotState
	Model Classifier
}

// Available reports whether the snapshot carries a classifier.
func (s *Snapshot) Available() bool {
	return s != nil && s.State == SnapshotTrained && s.Model != nil
}
