package binarchive

import (
	"io"

	"github.com/danjacques/gofslock/fslock"

	"github.com/streamforge/binarchive/internal/base"
)

/***************************************
 * Compressed file framing
 *
 * An optional envelope around a top-level Encode/Decode pair: a small
 * uncompressed header (magic + version), then the core tagged stream
 * wrapped in LZ4 or Zstd framing. The core wire format itself is
 * unchanged; this is only an outer transport.
 ***************************************/

var ArchiveFileMagic = base.MakeFourCC('B', 'A', 'R', 'C')
var ArchiveFileVersion = base.MakeFourCC('1', '0', '0', '0')

type CompressedFileOptions struct {
	Compression []base.CompressionOptionFunc
	Encode      []EncodeOption
	Decode      []DecodeOption
}

type CompressedFileOptionFunc func(*CompressedFileOptions)

func CompressedFileOptionFormat(format base.CompressionFormat) CompressedFileOptionFunc {
	return func(cfo *CompressedFileOptions) {
		cfo.Compression = append(cfo.Compression, base.CompressionOptionFormat(format))
	}
}
func CompressedFileOptionLevel(lvl base.CompressionLevel) CompressedFileOptionFunc {
	return func(cfo *CompressedFileOptions) {
		cfo.Compression = append(cfo.Compression, base.CompressionOptionLevel(lvl))
	}
}

// CompressedFileOptionPortable selects the pure-Go zstd codec, so a
// decoder built without cgo can read the file back.
func CompressedFileOptionPortable() CompressedFileOptionFunc {
	return func(cfo *CompressedFileOptions) {
		cfo.Compression = append(cfo.Compression,
			base.CompressionOptionFormat(base.COMPRESSION_FORMAT_ZSTD),
			base.CompressionOptionPortable(true))
	}
}

func CompressedFileOptionEncode(options ...EncodeOption) CompressedFileOptionFunc {
	return func(cfo *CompressedFileOptions) {
		cfo.Encode = append(cfo.Encode, options...)
	}
}
func CompressedFileOptionDecode(options ...DecodeOption) CompressedFileOptionFunc {
	return func(cfo *CompressedFileOptions) {
		cfo.Decode = append(cfo.Decode, options...)
	}
}

func newCompressedFileOptions(options ...CompressedFileOptionFunc) (result CompressedFileOptions) {
	for _, opt := range options {
		opt(&result)
	}
	return
}

func writeFileHeader(w io.Writer) error {
	magic := ArchiveFileMagic.Bytes()
	version := ArchiveFileVersion.Bytes()
	if _, err := w.Write(magic[:]); err != nil {
		return err
	}
	_, err := w.Write(version[:])
	return err
}

func readFileHeader(r io.Reader) error {
	var raw [8]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return ErrCorruptStream
	}
	magic := base.BytesToFourCC(raw[0], raw[1], raw[2], raw[3])
	version := base.BytesToFourCC(raw[4], raw[5], raw[6], raw[7])
	if magic != ArchiveFileMagic {
		return base.MakeError("binarchive: invalid file magic (%q != %q)", magic, ArchiveFileMagic)
	}
	if version != ArchiveFileVersion {
		return base.MakeError("binarchive: unsupported file version (%q != %q)", version, ArchiveFileVersion)
	}
	return nil
}

// CompressedFileWrite frames one Encode of root into w: header, then the
// compressed tagged stream. Compression defaults to LZ4/Fast.
func CompressedFileWrite(w io.Writer, root any, options ...CompressedFileOptionFunc) (err error) {
	cfo := newCompressedFileOptions(options...)

	if err = writeFileHeader(w); err != nil {
		return err
	}

	var compressedLen, rawLen int64
	observed := base.NewObservableWriter(w, func(io.Writer) func(int64, error) error {
		return func(n int64, err error) error {
			compressedLen += n
			return err
		}
	})

	cw := base.NewCompressedWriter(observed, cfo.Compression...)
	defer func() {
		if closeErr := cw.Close(); err == nil {
			err = closeErr
		}
		if err == nil && compressedLen > 0 {
			base.LogVerbose(LogSerialize, "compressed archive %d -> %d bytes (%.2f%%)",
				rawLen, compressedLen, 100.0*float64(compressedLen)/float64(rawLen))
		}
	}()

	counted := base.NewObservableWriter(cw, func(io.Writer) func(int64, error) error {
		return func(n int64, err error) error {
			rawLen += n
			return err
		}
	})

	return Encode(counted, root, cfo.Encode...)
}

// CompressedFileRead opens a stream produced by CompressedFileWrite and
// decodes the single root value it frames.
func CompressedFileRead(r io.Reader, options ...CompressedFileOptionFunc) (result any, err error) {
	cfo := newCompressedFileOptions(options...)

	if err = readFileHeader(r); err != nil {
		return nil, err
	}

	cr := base.NewCompressedReader(r, cfo.Compression...)
	defer func() {
		if closeErr := cr.Close(); err == nil {
			err = closeErr
		}
	}()

	return Decode(cr, cfo.Decode...)
}

/***************************************
 * Process-safe on-disk archives
 ***************************************/

// WriteFileLocked serializes root to path under an advisory cross-process
// file lock, so two producers never interleave partial streams in the
// same archive file. The lock is held for the whole write and released on
// every exit path.
func WriteFileLocked(path string, root any, options ...CompressedFileOptionFunc) (err error) {
	lock, err := fslock.Lock(path)
	if err != nil {
		return err
	}
	defer func() {
		if unlockErr := lock.Unlock(); err == nil {
			err = unlockErr
		}
	}()

	handle := lock.LockFile()
	if _, err = handle.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err = handle.Truncate(0); err != nil {
		return err
	}
	if err = CompressedFileWrite(handle, root, options...); err != nil {
		return err
	}
	return handle.Sync()
}

// ReadFileLocked decodes an archive previously written by WriteFileLocked,
// holding the same advisory lock while reading.
func ReadFileLocked(path string, options ...CompressedFileOptionFunc) (result any, err error) {
	lock, err := fslock.Lock(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if unlockErr := lock.Unlock(); err == nil {
			err = unlockErr
		}
	}()

	handle := lock.LockFile()
	if _, err = handle.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return CompressedFileRead(handle, options...)
}
