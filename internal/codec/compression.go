package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor wraps streams with a compression format.
type Compressor interface {
	Name() string
	NewWriter(w io.Writer) (io.WriteCloser, error)
	NewReader(r io.Reader) (io.ReadCloser, error)
	// Matches reports whether data starts with this format's stream header.
	Matches(data []byte) bool
}

// CompressorByName returns a built-in compressor. level is interpreted per
// format; zero selects the format's default.
func CompressorByName(name string, level int) (Compressor, error) {
	switch strings.ToLower(name) {
	case "", "zlib", "deflate":
		return Zlib{Level: level}, nil
	case "zstd":
		return Zstd{Level: level}, nil
	case "lz4":
		return LZ4{Level: level}, nil
	case "none":
		return None{}, nil
	default:
		return nil, errors.Newf("unknown compression %q", name)
	}
}

// builtins is the detection order used when decoding.
var builtins = []Compressor{Zstd{}, LZ4{}, Zlib{}}

// detect picks the compressor for data, preferring the configured one.
func detect(configured Compressor, data []byte) Compressor {
	if configured.Matches(data) {
		return configured
	}
	for _, c := range builtins {
		if c.Matches(data) {
			return c
		}
	}
	return configured
}

// Zlib is the zlib (RFC 1950) deflate stream format.
type Zlib struct {
	Level int
}

func (Zlib) Name() string { return "zlib" }

func (z Zlib) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := z.Level
	if level == 0 {
		level = zlib.DefaultCompression
	}
	return zlib.NewWriterLevel(w, level)
}

func (Zlib) NewReader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

// Matches checks for a deflate CMF byte with a valid FCHECK.
func (Zlib) Matches(data []byte) bool {
	if len(data) < 2 || data[0]&0x0f != 8 || data[0]>>4 > 7 {
		return false
	}
	return (uint16(data[0])<<8|uint16(data[1]))%31 == 0
}

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Zstd is the Zstandard frame format.
type Zstd struct {
	Level int
}

func (Zstd) Name() string { return "zstd" }

func (z Zstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	level := zstd.SpeedDefault
	if z.Level > 0 {
		level = zstd.EncoderLevelFromZstd(z.Level)
	}
	return zstd.NewWriter(w, zstd.WithEncoderLevel(level))
}

func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

func (Zstd) Matches(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

var lz4Magic = []byte{0x04, 0x22, 0x4d, 0x18}

var lz4Levels = []lz4.CompressionLevel{
	lz4.Fast, lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4,
	lz4.Level5, lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

// LZ4 is the LZ4 frame format.
type LZ4 struct {
	Level int
}

func (LZ4) Name() string { return "lz4" }

func (l LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	zw := lz4.NewWriter(w)
	level := min(max(l.Level, 0), len(lz4Levels)-1)
	err := zw.Apply(
		lz4.CompressionLevelOption(lz4Levels[level]),
		lz4.ChecksumOption(true),
		lz4.BlockChecksumOption(true),
	)
	if err != nil {
		return nil, err
	}
	return zw, nil
}

// NewReader rejects input that does not hold a whole frame. The lz4 reader
// reports a clean EOF when the end mark or content checksum is cut off.
func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := lz4FrameComplete(data); err != nil {
		return nil, err
	}
	return io.NopCloser(lz4.NewReader(bytes.NewReader(data))), nil
}

func (LZ4) Matches(data []byte) bool {
	return bytes.HasPrefix(data, lz4Magic)
}

// FLG bits of the LZ4 frame descriptor.
const (
	lz4FlagDictID        = 0x01
	lz4FlagContentSum    = 0x04
	lz4FlagContentSize   = 0x08
	lz4FlagBlockChecksum = 0x10
)

// lz4FrameComplete walks the frame layout up to the end mark and trailing
// content checksum without decompressing.
func lz4FrameComplete(data []byte) error {
	// magic, FLG, BD
	if len(data) < 6 || !bytes.HasPrefix(data, lz4Magic) {
		return errors.Wrap(io.ErrUnexpectedEOF, "lz4 frame header")
	}
	flg := data[4]
	pos := 6
	if flg&lz4FlagContentSize != 0 {
		pos += 8
	}
	if flg&lz4FlagDictID != 0 {
		pos += 4
	}
	pos++ // header checksum

	for {
		if len(data) < pos+4 {
			return errors.Wrap(io.ErrUnexpectedEOF, "lz4 block size")
		}
		size := int(binary.LittleEndian.Uint32(data[pos:]) & 0x7fffffff)
		pos += 4
		if size == 0 {
			break
		}
		pos += size
		if flg&lz4FlagBlockChecksum != 0 {
			pos += 4
		}
	}

	if flg&lz4FlagContentSum != 0 {
		pos += 4
	}
	if len(data) < pos {
		return errors.Wrap(io.ErrUnexpectedEOF, "lz4 frame trailer")
	}
	return nil
}

// None stores serialized bytes as they are.
type None struct{}

func (None) Name() string { return "none" }

func (None) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return nopWriteCloser{w}, nil
}

func (None) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

// Matches is always false: uncompressed data has no header.
func (None) Matches([]byte) bool { return false }

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
