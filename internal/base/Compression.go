package base

import (
	"io"
	"strings"

	"github.com/DataDog/zstd"
	kzstd "github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

var LogCompression = NewLogCategory("Compression")

type CompressedReader interface {
	io.ReadCloser
}
type CompressedWriter interface {
	Flush() error
	io.WriteCloser
}

type CompressionOptions struct {
	Format     CompressionFormat
	Level      CompressionLevel
	Dictionary []byte
	// Portable selects the pure-Go zstd decoder/encoder so a reader built
	// without cgo can still open a zstd-framed stream.
	Portable bool
}

type CompressionOptionFunc func(*CompressionOptions)

func CompressionOptionFormat(fmt CompressionFormat) CompressionOptionFunc {
	return func(co *CompressionOptions) {
		co.Format = fmt
	}
}
func CompressionOptionLevel(lvl CompressionLevel) CompressionOptionFunc {
	return func(co *CompressionOptions) {
		co.Level = lvl
	}
}
func CompressionOptionDictionary(dict []byte) CompressionOptionFunc {
	return func(co *CompressionOptions) {
		co.Dictionary = dict
	}
}
func CompressionOptionPortable(enabled bool) CompressionOptionFunc {
	return func(co *CompressionOptions) {
		co.Portable = enabled
	}
}

func NewCompressionOptions(options ...CompressionOptionFunc) (result CompressionOptions) {
	// Lz4 is almost as fast as uncompressed, but with fewer IO: when using Fast speed it is almost always a free win
	result.Format = COMPRESSION_FORMAT_LZ4
	result.Level = COMPRESSION_LEVEL_FAST

	for _, opt := range options {
		opt(&result)
	}
	return
}
func (x *CompressionOptions) Options(co *CompressionOptions) {
	*co = *x
}

func NewCompressedReader(reader io.Reader, options ...CompressionOptionFunc) CompressedReader {
	co := NewCompressionOptions(options...)
	switch co.Format {

	case COMPRESSION_FORMAT_LZ4:
		return NewLz4Reader(reader)

	case COMPRESSION_FORMAT_ZSTD:
		if co.Portable {
			return NewPortableZStdReader(reader)
		}
		if co.Dictionary == nil {
			return NewZStdReader(reader)
		}
		return NewZStdReaderDict(reader, co.Dictionary)

	default:
		UnexpectedValuePanic(co.Format, co.Format)
		return nil
	}
}

func NewCompressedWriter(writer io.Writer, options ...CompressionOptionFunc) CompressedWriter {
	co := NewCompressionOptions(options...)
	switch co.Format {

	case COMPRESSION_FORMAT_LZ4:
		return NewLz4Writer(writer, co.Level)

	case COMPRESSION_FORMAT_ZSTD:
		if co.Portable {
			return NewPortableZStdWriter(writer, co.Level)
		}
		if co.Dictionary == nil {
			return NewZStdWriter(writer, co.Level)
		}
		return NewZStdWriterDict(writer, co.Level, co.Dictionary)

	default:
		UnexpectedValuePanic(co.Format, co.Format)
		return nil
	}
}

/***************************************
 * LZ4 Compression Pool
 ***************************************/

func NewLz4Reader(reader io.Reader) CompressedReader {
	result := transientLz4Reader{TransientLz4Reader.Allocate()}
	result.Reset(reader)
	return result
}
func NewLz4Writer(writer io.Writer, lvl CompressionLevel) CompressedWriter {
	result := transientLz4Writer{TransientLz4Writer.Allocate()}
	switch lvl {
	case COMPRESSION_LEVEL_FAST:
		result.Apply(lz4.CompressionLevelOption(lz4.Fast))
	case COMPRESSION_LEVEL_BALANCED:
		result.Apply(lz4.CompressionLevelOption(lz4.Level3))
	case COMPRESSION_LEVEL_BEST:
		result.Apply(lz4.CompressionLevelOption(lz4.Level7))
	}
	result.Reset(writer)
	return result
}

type transientLz4Reader struct {
	*lz4.Reader
}

// Fast is... fast: higher levels cost far more encode time than they save in IO
var lz4CompressionLevelOptionDefault = lz4.CompressionLevelOption(lz4.Fast)

func applyLz4Options(lz interface {
	Apply(...lz4.Option) error
}, options ...lz4.Option) {
	options = append(options, lz4.ConcurrencyOption(1))
	err := lz.Apply(options...)
	LogPanicIfFailed(LogCompression, err)
}

func (x transientLz4Reader) Close() error {
	TransientLz4Reader.Release(x.Reader)
	return nil
}

var TransientLz4Reader = NewRecycler[*lz4.Reader](
	func() *lz4.Reader {
		r := lz4.NewReader(nil)
		applyLz4Options(r)
		return r
	},
	func(r *lz4.Reader) {
		r.Reset(nil)
		applyLz4Options(r)
	})

type transientLz4Writer struct {
	*lz4.Writer
}

func (x transientLz4Writer) Close() (err error) {
	defer TransientLz4Writer.Release(x.Writer)
	return x.Writer.Close()
}

var TransientLz4Writer = NewRecycler[*lz4.Writer](
	func() *lz4.Writer {
		w := lz4.NewWriter(nil)
		applyLz4Options(w,
			lz4CompressionLevelOptionDefault,
			lz4.BlockSizeOption(lz4.Block256Kb),
			lz4.ChecksumOption(false))
		return w
	},
	func(w *lz4.Writer) {
		w.Close()
		w.Reset(nil)
		applyLz4Options(w,
			lz4CompressionLevelOptionDefault,
			lz4.BlockSizeOption(lz4.Block256Kb),
			lz4.ChecksumOption(false))
	})

/***************************************
 * ZSTD Compression (cgo)
 ***************************************/

var zstdCompressionLevelDefault = zstd.DefaultCompression

func getZStdCompressionLevel(lvl CompressionLevel) (result int) {
	result = zstdCompressionLevelDefault
	switch lvl {
	case COMPRESSION_LEVEL_FAST:
		result = zstd.BestSpeed
	case COMPRESSION_LEVEL_BALANCED:
		result = zstd.DefaultCompression
	case COMPRESSION_LEVEL_BEST:
		result = zstd.BestCompression
	}
	return
}

func NewZStdReader(reader io.Reader) CompressedReader {
	return zstd.NewReader(reader)
}
func NewZStdWriter(writer io.Writer, lvl CompressionLevel) CompressedWriter {
	result := zstd.NewWriterLevel(writer, getZStdCompressionLevel(lvl))
	result.SetNbWorkers(1)
	return result
}

func NewZStdReaderDict(reader io.Reader, dictionary []byte) CompressedReader {
	return zstd.NewReaderDict(reader, dictionary)
}
func NewZStdWriterDict(writer io.Writer, lvl CompressionLevel, dictionary []byte) CompressedWriter {
	result := zstd.NewWriterLevelDict(writer, getZStdCompressionLevel(lvl), dictionary)
	result.SetNbWorkers(1)
	return result
}

/***************************************
 * ZSTD Compression (pure Go fallback)
 ***************************************/

func getPortableZStdCompressionLevel(lvl CompressionLevel) kzstd.EncoderLevel {
	switch lvl {
	case COMPRESSION_LEVEL_FAST:
		return kzstd.SpeedFastest
	case COMPRESSION_LEVEL_BALANCED:
		return kzstd.SpeedDefault
	case COMPRESSION_LEVEL_BEST:
		return kzstd.SpeedBestCompression
	default:
		return kzstd.SpeedDefault
	}
}

func NewPortableZStdReader(reader io.Reader) CompressedReader {
	decoder, err := kzstd.NewReader(reader,
		kzstd.WithDecoderConcurrency(1))
	LogPanicIfFailed(LogCompression, err)
	return decoder.IOReadCloser()
}

type portableZStdWriter struct {
	*kzstd.Encoder
}

func (x portableZStdWriter) Flush() error {
	return x.Encoder.Flush()
}

func NewPortableZStdWriter(writer io.Writer, lvl CompressionLevel) CompressedWriter {
	encoder, err := kzstd.NewWriter(writer,
		kzstd.WithEncoderLevel(getPortableZStdCompressionLevel(lvl)),
		kzstd.WithEncoderConcurrency(1))
	LogPanicIfFailed(LogCompression, err)
	return portableZStdWriter{Encoder: encoder}
}

/***************************************
 * CompressionLevelType
 ***************************************/

type CompressionLevel int32

const (
	COMPRESSION_LEVEL_INHERIT CompressionLevel = iota
	COMPRESSION_LEVEL_FAST
	COMPRESSION_LEVEL_BALANCED
	COMPRESSION_LEVEL_BEST
)

func (x CompressionLevel) String() string {
	switch x {
	case COMPRESSION_LEVEL_INHERIT:
		return "INHERIT"
	case COMPRESSION_LEVEL_FAST:
		return "FAST"
	case COMPRESSION_LEVEL_BALANCED:
		return "BALANCED"
	case COMPRESSION_LEVEL_BEST:
		return "BEST"
	default:
		UnexpectedValue(x)
		return ""
	}
}
func (x *CompressionLevel) Set(in string) (err error) {
	switch strings.ToUpper(in) {
	case COMPRESSION_LEVEL_INHERIT.String():
		*x = COMPRESSION_LEVEL_INHERIT
	case COMPRESSION_LEVEL_FAST.String():
		*x = COMPRESSION_LEVEL_FAST
	case COMPRESSION_LEVEL_BALANCED.String():
		*x = COMPRESSION_LEVEL_BALANCED
	case COMPRESSION_LEVEL_BEST.String():
		*x = COMPRESSION_LEVEL_BEST
	default:
		err = MakeUnexpectedValueError(x, in)
	}
	return err
}

/***************************************
 * CompressionFormat
 ***************************************/

type CompressionFormat int32

const (
	COMPRESSION_FORMAT_INHERIT CompressionFormat = iota
	COMPRESSION_FORMAT_LZ4
	COMPRESSION_FORMAT_ZSTD
)

func (x CompressionFormat) String() string {
	switch x {
	case COMPRESSION_FORMAT_INHERIT:
		return "INHERIT"
	case COMPRESSION_FORMAT_LZ4:
		return "LZ4"
	case COMPRESSION_FORMAT_ZSTD:
		return "ZSTD"
	default:
		UnexpectedValue(x)
		return ""
	}
}
func (x *CompressionFormat) Set(in string) (err error) {
	switch strings.ToUpper(in) {
	case COMPRESSION_FORMAT_INHERIT.String():
		*x = COMPRESSION_FORMAT_INHERIT
	case COMPRESSION_FORMAT_LZ4.String():
		*x = COMPRESSION_FORMAT_LZ4
	case COMPRESSION_FORMAT_ZSTD.String():
		*x = COMPRESSION_FORMAT_ZSTD
	default:
		err = MakeUnexpectedValueError(x, in)
	}
	return err
}
