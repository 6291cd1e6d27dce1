package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/desertthunder/newspet/internal/codec"
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/repositories"
	"github.com/desertthunder/newspet/internal/shared"
)

// RecordStore is the model record store the engine runs on.
// [repositories.ClassifierRepository] implements it.
type RecordStore interface {
	BeginExclusiveSession(ctx context.Context, id int64) (*repositories.RawRecord, *repositories.Session, error)
	Begin(ctx context.Context, id int64) (*repositories.Session, error)
	CommitSession(ctx context.Context, s *repositories.Session, id int64, payload []byte) error
	ReadSnapshot(ctx context.Context, id int64) ([]byte, bool, error)
}

// DocumentTrainer is implemented by trainers that learn from labelled raw text.
type DocumentTrainer interface {
	TrainDocument(pipe models.Pipeline, label, text string) error
}

// Document is one labelled training example.
type Document struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// TrainResult summarizes a [ClassifierEngine.TrainBatch] run.
type TrainResult struct {
	ID           int64 `json:"id"`
	Bootstrapped bool  `json:"bootstrapped"`
	Trained      int   `json:"trained"`
	Instances    int   `json:"instances"`
}

// ClassifierEngine implements checkout, checkin and lockless reads over a [RecordStore].
type ClassifierEngine struct {
	store   RecordStore
	codec   *codec.Codec
	factory models.Factory
	locker  Locker
	logger  *log.Logger
}

// EngineOpts contains the dependencies of a ClassifierEngine.
// Store and Factory are required.
type EngineOpts struct {
	Store   RecordStore
	Codec   *codec.Codec
	Factory models.Factory
	Locker  Locker
	Logger  *log.Logger
}

// NewClassifierEngine creates an engine, defaulting the codec to gob+zlib,
// the locker to a process-local [KeyedLocker] and the logger to a silent one.
func NewClassifierEngine(opts EngineOpts) *ClassifierEngine {
	if opts.Codec == nil {
		opts.Codec = codec.Default()
	}
	if opts.Locker == nil {
		opts.Locker = NewKeyedLocker()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewDiscardLogger()
	}

	return &ClassifierEngine{
		store:   opts.Store,
		codec:   opts.Codec,
		factory: opts.Factory,
		locker:  opts.Locker,
		logger:  opts.Logger,
	}
}

// Checkout loads the trainer and pipeline of id for an exclusive update.
//
// Unknown identities and rows without a payload get a fresh trainer and
// pipeline; for a row without a payload this discards whatever an interrupted
// session had in progress. The store session is committed before returning,
// so the row exists even if the handle is never checked in.
func (e *ClassifierEngine) Checkout(ctx context.Context, id int64) (*models.CheckoutHandle, error) {
	logger := shared.WithLogger(e.logger, "classifier", id)

	record, session, err := e.store.BeginExclusiveSession(ctx, id)
	if err != nil {
		return nil, &models.CheckoutError{ID: id, Err: err}
	}

	var (
		trainer      models.Trainer
		pipe         models.Pipeline
		bootstrapped bool
	)

	switch {
	case record.Trained():
		payload, err := e.codec.Decode(record.Payload)
		if err != nil {
			return nil, e.abortCheckout(session, id, err)
		}
		trainer, pipe = payload.Trainer, payload.Pipe
	case record.Existed:
		logger.Warn("stored classifier has no payload, restarting training")
		bootstrapped = true
	default:
		logger.Info("bootstrapping classifier")
		bootstrapped = true
	}

	if bootstrapped {
		trainer, pipe = e.factory.NewTrainer(), e.factory.NewPipeline()
		if trainer == nil || pipe == nil {
			return nil, e.abortCheckout(session, id, errors.Wrap(shared.ErrInvalidInput, "factory returned a nil trainer or pipeline"))
		}
	}

	if err := session.Commit(); err != nil {
		return nil, &models.CheckoutError{ID: id, Err: err}
	}

	handle := models.NewCheckoutHandle(id, shared.GenerateID(), trainer, pipe, bootstrapped)
	logger.Debug("checked out", "session", handle.SessionID, "instances", trainer.Instances(), "bootstrapped", bootstrapped)

	return handle, nil
}

func (e *ClassifierEngine) abortCheckout(session *repositories.Session, id int64, cause error) error {
	if err := session.Rollback(); err != nil {
		cause = errors.WithSecondaryError(cause, err)
	}
	return &models.CheckoutError{ID: id, Err: cause}
}

// Checkin derives the classifier from the handle's trainer and persists
// classifier, trainer and pipeline in a new transaction.
//
// On failure the previously committed payload stays in place and the handle
// remains open, so the caller may retry.
func (e *ClassifierEngine) Checkin(ctx context.Context, h *models.CheckoutHandle) error {
	if h == nil {
		return &models.CheckinError{Err: errors.Wrap(shared.ErrInvalidInput, "nil checkout handle")}
	}
	if h.Closed() {
		return &models.CheckinError{ID: h.ID, Err: shared.ErrHandleClosed}
	}
	if h.Trainer == nil || h.Pipe == nil {
		return &models.CheckinError{ID: h.ID, Err: errors.Wrap(shared.ErrInvalidInput, "handle has no trainer or pipeline")}
	}

	model, err := h.Trainer.CurrentModel(h.Pipe)
	if err != nil {
		return &models.CheckinError{ID: h.ID, Err: errors.Wrap(err, "derive classifier")}
	}

	data, err := e.codec.Encode(&models.Payload{Model: model, Trainer: h.Trainer, Pipe: h.Pipe})
	if err != nil {
		return &models.CheckinError{ID: h.ID, Err: err}
	}

	session, err := e.store.Begin(ctx, h.ID)
	if err != nil {
		return &models.CheckinError{ID: h.ID, Err: err}
	}

	if err := e.store.CommitSession(ctx, session, h.ID, data); err != nil {
		return &models.CheckinError{ID: h.ID, Err: err}
	}

	h.Close()
	e.logger.Info("checked in", "classifier", h.ID, "session", h.SessionID, "instances", h.Trainer.Instances(), "bytes", len(data), "codec", e.codec.Name())

	return nil
}

// Read returns the last committed classifier for id without taking any lock.
//
// Unknown identities and identities that were never checked in both yield a
// [models.SnapshotUnavailable] snapshot.
func (e *ClassifierEngine) Read(ctx context.Context, id int64) (*models.Snapshot, error) {
	data, ok, err := e.store.ReadSnapshot(ctx, id)
	if err != nil {
		return nil, &models.ReadError{ID: id, Err: err}
	}
	if !ok {
		return &models.Snapshot{ID: id, State: models.SnapshotUnavailable}, nil
	}

	payload, err := e.codec.Decode(data)
	if err != nil {
		return nil, &models.ReadError{ID: id, Err: err}
	}
	if payload.Model == nil {
		return nil, &models.ReadError{ID: id, Err: &models.DecodingError{Stage: "shape", Err: errors.New("payload has no classifier")}}
	}

	return &models.Snapshot{ID: id, State: models.SnapshotTrained, Model: payload.Model}, nil
}

// Train holds the lock for id while it checks out, runs fn and checks in.
//
// When fn fails nothing is checked in and fn's error is returned.
func (e *ClassifierEngine) Train(ctx context.Context, id int64, fn func(*models.CheckoutHandle) error) error {
	unlock, err := e.locker.Lock(ctx, LockKey(id))
	if err != nil {
		return errors.Wrapf(err, "lock classifier %d", id)
	}
	defer unlock()

	h, err := e.Checkout(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(h); err != nil {
		return errors.Wrapf(err, "train classifier %d", id)
	}

	return e.Checkin(ctx, h)
}

// TrainBatch trains docs into id under one lock, checkout and checkin.
//
// The trainer must implement [DocumentTrainer]. Documents that fail to train
// abort the batch before checkin.
func (e *ClassifierEngine) TrainBatch(ctx context.Context, id int64, docs []Document, progress chan<- ProgressUpdate) (*TrainResult, error) {
	result := &TrainResult{ID: id}
	key := LockKey(id)

	sendProgress(progress, acquireLockUpdate(key))
	unlock, err := e.locker.Lock(ctx, key)
	if err != nil {
		return nil, errors.Wrapf(err, "lock classifier %d", id)
	}
	defer unlock()

	h, err := e.Checkout(ctx, id)
	if err != nil {
		return nil, err
	}
	result.Bootstrapped = h.Bootstrapped
	sendProgress(progress, checkoutUpdate(id, h.Bootstrapped))

	trainer, ok := h.Trainer.(DocumentTrainer)
	if !ok {
		return nil, errors.Wrapf(shared.ErrInvalidInput, "trainer %T cannot train documents", h.Trainer)
	}

	total := len(docs)
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := trainer.TrainDocument(h.Pipe, doc.Label, doc.Text); err != nil {
			sendProgress(progress, trainFailedUpdate(i+1, total, doc, err))
			return nil, errors.Wrapf(err, "train document %d", i+1)
		}
		result.Trained++
		sendProgress(progress, trainUpdate(i+1, total, doc))
	}

	if err := e.Checkin(ctx, h); err != nil {
		return nil, err
	}
	result.Instances = h.Trainer.Instances()
	sendProgress(progress, checkinUpdate(id, result.Instances))

	return result, nil
}
