package codec

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/shared"
)

// Codec composes a [Serializer] with a [Compressor].
// A Codec is safe for concurrent use.
type Codec struct {
	serializer Serializer
	compressor Compressor
}

// New creates a Codec. Nil arguments select [Gob] and default [Zlib].
func New(s Serializer, c Compressor) *Codec {
	if s == nil {
		s = Gob{}
	}
	if c == nil {
		c = Zlib{}
	}
	return &Codec{serializer: s, compressor: c}
}

// Default returns the gob+zlib codec.
func Default() *Codec {
	return New(nil, nil)
}

// FromConfig builds a gob codec with the configured compression.
func FromConfig(cfg shared.CodecConfig) (*Codec, error) {
	c, err := CompressorByName(cfg.Compression, cfg.Level)
	if err != nil {
		return nil, errors.Wrapf(shared.ErrInvalidConfig, "%v", err)
	}
	return New(Gob{}, c), nil
}

// Name identifies the serializer and compressor, e.g. "gob+zlib".
func (c *Codec) Name() string {
	return c.serializer.Name() + "+" + c.compressor.Name()
}

// Encode serializes and compresses p.
func (c *Codec) Encode(p *models.Payload) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodeTo(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo serializes p and writes the compressed stream to w.
func (c *Codec) EncodeTo(w io.Writer, p *models.Payload) error {
	if p == nil || p.Trainer == nil || p.Pipe == nil {
		return &models.EncodingError{Stage: "serialize", Err: errors.Wrap(shared.ErrInvalidInput, "payload requires a trainer and a pipeline")}
	}

	var raw bytes.Buffer
	if err := c.serializer.Serialize(&raw, p); err != nil {
		return &models.EncodingError{Stage: "serialize", Err: errors.Wrapf(err, "%s serializer", c.serializer.Name())}
	}

	cw, err := c.compressor.NewWriter(w)
	if err != nil {
		return &models.EncodingError{Stage: "compress", Err: errors.Wrapf(err, "%s writer", c.compressor.Name())}
	}
	if _, err := raw.WriteTo(cw); err != nil {
		cw.Close()
		return &models.EncodingError{Stage: "compress", Err: errors.Wrapf(err, "%s write", c.compressor.Name())}
	}
	if err := cw.Close(); err != nil {
		return &models.EncodingError{Stage: "compress", Err: errors.Wrapf(err, "%s flush", c.compressor.Name())}
	}

	return nil
}

// Decode decompresses and deserializes data.
func (c *Codec) Decode(data []byte) (*models.Payload, error) {
	if len(data) == 0 {
		return nil, &models.DecodingError{Stage: "decompress", Err: errors.New("empty payload")}
	}

	comp := detect(c.compressor, data)
	rc, err := comp.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &models.DecodingError{Stage: "decompress", Err: errors.Wrapf(err, "%s reader", comp.Name())}
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, &models.DecodingError{Stage: "decompress", Err: errors.Wrapf(err, "%s read", comp.Name())}
	}

	p, err := c.serializer.Deserialize(bytes.NewReader(raw))
	if err != nil {
		return nil, &models.DecodingError{Stage: "deserialize", Err: errors.Wrapf(err, "%s serializer", c.serializer.Name())}
	}

	if p.Trainer == nil || p.Pipe == nil {
		return nil, &models.DecodingError{Stage: "shape", Err: errors.New("payload is missing its trainer or pipeline")}
	}

	return p, nil
}
