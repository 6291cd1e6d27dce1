package codec

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/desertthunder/newspet/internal/bayes"
	"github.com/desertthunder/newspet/internal/models"
	"github.com/desertthunder/newspet/internal/shared"
	tu "github.com/desertthunder/newspet/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gob.Register(&tu.StubTrainer{})
	gob.Register(&tu.StubPipeline{})
	gob.Register(&tu.StubClassifier{})
}

// trainedPayload builds a payload the way a checkin does.
func trainedPayload(t *testing.T) *models.Payload {
	t.Helper()

	pipe := bayes.NewPipeline(2, []string{"the"})
	trainer := bayes.NewTrainer(1, []string{"interesting", "uninteresting"})
	require.NoError(t, trainer.Train(pipe, "interesting", "the central bank raised rates"))
	require.NoError(t, trainer.Train(pipe, "uninteresting", "celebrity wore a hat"))

	model, err := trainer.CurrentModel(pipe)
	require.NoError(t, err)

	return &models.Payload{Model: model, Trainer: trainer, Pipe: pipe}
}

func TestCodecRoundTrip(t *testing.T) {
	compressors := []Compressor{Zlib{}, Zlib{Level: 9}, Zstd{}, Zstd{Level: 19}, LZ4{}, LZ4{Level: 9}, None{}}

	for _, comp := range compressors {
		t.Run(comp.Name(), func(t *testing.T) {
			c := New(Gob{}, comp)
			original := trainedPayload(t)

			data, err := c.Encode(original)
			require.NoError(t, err)
			require.NotEmpty(t, data)

			decoded, err := c.Decode(data)
			require.NoError(t, err)

			trainer, ok := decoded.Trainer.(*bayes.Trainer)
			require.True(t, ok, "trainer type %T", decoded.Trainer)
			pipe, ok := decoded.Pipe.(*bayes.Pipeline)
			require.True(t, ok, "pipe type %T", decoded.Pipe)
			model, ok := decoded.Model.(*bayes.Classifier)
			require.True(t, ok, "model type %T", decoded.Model)

			assert.Equal(t, original.Trainer.Instances(), trainer.Instances())
			assert.Equal(t, original.Pipe.FeatureCount(), pipe.FeatureCount())

			// the decoded trainer and pipeline keep training in the same feature space
			require.NoError(t, trainer.Train(pipe, "interesting", "rates rise again"))
			rebuilt, err := trainer.Classifier(pipe)
			require.NoError(t, err)
			assert.Equal(t, "interesting", rebuilt.Classify("bank rates").Label)

			want := original.Model.(*bayes.Classifier).Classify("central bank rates")
			got := model.Classify("central bank rates")
			assert.Equal(t, want.Label, got.Label)
			assert.InDelta(t, want.Probability("interesting"), got.Probability("interesting"), 1e-12)
		})
	}
}

func TestCodecCompresses(t *testing.T) {
	pipe := bayes.NewPipeline(1, nil)
	trainer := bayes.NewTrainer(1, []string{"a"})
	require.NoError(t, trainer.Train(pipe, "a", strings.Repeat("repeated words compress well ", 200)))
	p := &models.Payload{Trainer: trainer, Pipe: pipe}

	raw, err := New(Gob{}, None{}).Encode(p)
	require.NoError(t, err)

	for _, comp := range []Compressor{Zlib{}, Zstd{}, LZ4{}} {
		data, err := New(Gob{}, comp).Encode(p)
		require.NoError(t, err)
		assert.True(t, comp.Matches(data), "%s output should carry its header", comp.Name())
		assert.LessOrEqual(t, len(data), len(raw)+32, comp.Name())
	}
}

func TestCodecDetectsCompression(t *testing.T) {
	p := trainedPayload(t)

	for _, written := range []Compressor{Zlib{}, Zstd{}, LZ4{}} {
		data, err := New(Gob{}, written).Encode(p)
		require.NoError(t, err)

		for _, configured := range []Compressor{Zlib{}, Zstd{}, LZ4{}} {
			decoded, err := New(Gob{}, configured).Decode(data)
			require.NoError(t, err, "written with %s, read with %s", written.Name(), configured.Name())
			assert.Equal(t, p.Trainer.Instances(), decoded.Trainer.Instances())
		}
	}
}

func TestCodecEncodeErrors(t *testing.T) {
	c := Default()

	t.Run("nil payload", func(t *testing.T) {
		_, err := c.Encode(nil)

		var encErr *models.EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "serialize", encErr.Stage)
		assert.True(t, errors.Is(err, shared.ErrInvalidInput))
	})

	t.Run("missing pipeline", func(t *testing.T) {
		_, err := c.Encode(&models.Payload{Trainer: &tu.StubTrainer{}})

		var encErr *models.EncodingError
		require.ErrorAs(t, err, &encErr)
	})

	t.Run("unserializable graph", func(t *testing.T) {
		_, err := c.Encode(&models.Payload{Trainer: &tu.StubTrainer{}, Pipe: tu.Unencodable{Fn: func() {}}})

		var encErr *models.EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "serialize", encErr.Stage)
	})

	t.Run("stream fault", func(t *testing.T) {
		err := c.EncodeTo(&tu.FWriter{}, trainedPayload(t))

		var encErr *models.EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "compress", encErr.Stage)
	})

	t.Run("stream fault after first write", func(t *testing.T) {
		var buf bytes.Buffer
		err := New(Gob{}, None{}).EncodeTo(tu.NewLimitedWriter(0, 0, &buf), trainedPayload(t))

		var encErr *models.EncodingError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, "compress", encErr.Stage)
		assert.Zero(t, buf.Len())
	})
}

func TestCodecDecodeErrors(t *testing.T) {
	c := Default()
	valid, err := c.Encode(trainedPayload(t))
	require.NoError(t, err)

	tc := []struct {
		name  string
		data  []byte
		stage string
	}{
		{name: "empty", data: nil, stage: "decompress"},
		{name: "not compressed", data: []byte("plain text is not zlib"), stage: "decompress"},
		{name: "truncated", data: valid[:len(valid)/2], stage: "decompress"},
		{name: "corrupt checksum", data: append(append([]byte{}, valid[:len(valid)-1]...), valid[len(valid)-1]^0xff), stage: "decompress"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.data)

			var decErr *models.DecodingError
			require.ErrorAs(t, err, &decErr)
			assert.Equal(t, tt.stage, decErr.Stage)
		})
	}

	t.Run("not a payload", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := Zlib{}.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write([]byte("definitely not gob"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		_, err = c.Decode(buf.Bytes())

		var decErr *models.DecodingError
		require.ErrorAs(t, err, &decErr)
		assert.Equal(t, "deserialize", decErr.Stage)
	})

	t.Run("wrong shape", func(t *testing.T) {
		var raw bytes.Buffer
		require.NoError(t, gob.NewEncoder(&raw).Encode(&gobPayload{Model: &tu.StubClassifier{Names: []string{"x"}}}))

		var data bytes.Buffer
		w, err := Zlib{}.NewWriter(&data)
		require.NoError(t, err)
		_, err = raw.WriteTo(w)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		_, err = c.Decode(data.Bytes())

		var decErr *models.DecodingError
		require.ErrorAs(t, err, &decErr)
		assert.Equal(t, "shape", decErr.Stage)
	})
}

func TestCodecRejectsTruncation(t *testing.T) {
	p := trainedPayload(t)

	for _, comp := range []Compressor{Zlib{}, Zstd{}, LZ4{}, None{}} {
		t.Run(comp.Name(), func(t *testing.T) {
			c := New(Gob{}, comp)
			data, err := c.Encode(p)
			require.NoError(t, err)

			for n := range len(data) {
				_, err := c.Decode(data[:n])

				var decErr *models.DecodingError
				require.ErrorAs(t, err, &decErr, "prefix of %d/%d bytes", n, len(data))
			}
		})
	}

	t.Run("lz4 trailer", func(t *testing.T) {
		data, err := New(Gob{}, LZ4{}).Encode(p)
		require.NoError(t, err)

		require.NoError(t, lz4FrameComplete(data))
		// content checksum, then the end mark
		assert.ErrorIs(t, lz4FrameComplete(data[:len(data)-4]), io.ErrUnexpectedEOF)
		assert.ErrorIs(t, lz4FrameComplete(data[:len(data)-8]), io.ErrUnexpectedEOF)
	})
}

func TestCompressorByName(t *testing.T) {
	tc := []struct {
		name string
		want string
	}{
		{name: "", want: "zlib"},
		{name: "deflate", want: "zlib"},
		{name: "ZSTD", want: "zstd"},
		{name: "lz4", want: "lz4"},
		{name: "none", want: "none"},
	}

	for _, tt := range tc {
		t.Run(tt.want, func(t *testing.T) {
			c, err := CompressorByName(tt.name, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.Name())
		})
	}

	_, err := CompressorByName("brotli", 0)
	assert.Error(t, err)

	_, err = FromConfig(shared.CodecConfig{Compression: "brotli"})
	assert.True(t, errors.Is(err, shared.ErrInvalidConfig))

	c, err := FromConfig(shared.CodecConfig{Compression: "zstd", Level: 3})
	require.NoError(t, err)
	assert.Equal(t, "gob+zstd", c.Name())
}
