package codec

import (
	"encoding/gob"
	"io"

	"github.com/desertthunder/newspet/internal/models"
)

// Serializer writes and reads a payload object graph.
// Implementations must be safe for concurrent use.
type Serializer interface {
	Name() string
	Serialize(w io.Writer, p *models.Payload) error
	Deserialize(r io.Reader) (*models.Payload, error)
}

// Gob serializes payloads with encoding/gob. Concrete collaborator types must
// be registered with [gob.Register] before they are encoded or decoded.
type Gob struct{}

// gobPayload is the wire form of [models.Payload]. Field names are part of the
// stored format.
type gobPayload struct {
	Model   models.Classifier
	Trainer models.Trainer
	Pipe    models.Pipeline
}

func (Gob) Name() string { return "gob" }

func (Gob) Serialize(w io.Writer, p *models.Payload) error {
	return gob.NewEncoder(w).Encode(&gobPayload{Model: p.Model, Trainer: p.Trainer, Pipe: p.Pipe})
}

func (Gob) Deserialize(r io.Reader) (*models.Payload, error) {
	var wire gobPayload
	if err := gob.NewDecoder(r).Decode(&wire); err != nil {
		return nil, err
	}
	return &models.Payload{Model: wire.Model, Trainer: wire.Trainer, Pipe: wire.Pipe}, nil
}
