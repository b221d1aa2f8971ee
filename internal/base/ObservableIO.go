package base

import "io"

/***************************************
 * Observable Writer
 ***************************************/

type ObservableWriterFunc = func(io.Writer) func(int64, error) error

type ObservableWriter struct {
	io.Writer
	OnWrite ObservableWriterFunc
}

func NewObservableWriter(w io.Writer, onWrite ObservableWriterFunc) io.Writer {
	Assert(func() bool { return w != nil })
	if onWrite == nil {
		return w
	}
	return ObservableWriter{
		Writer:  w,
		OnWrite: onWrite,
	}
}

func (x ObservableWriter) Flush() error {
	return FlushWriterIFP(x.Writer)
}
func (x ObservableWriter) Close() error {
	return CloseWriterIFP(x.Writer)
}
func (x ObservableWriter) Write(buf []byte) (n int, err error) {
	onWrite := x.OnWrite(x.Writer)
	n, err = x.Writer.Write(buf)
	if er := onWrite(int64(n), err); er != nil {
		err = er
	}
	return
}

/***************************************
 * Observable Reader
 ***************************************/

type ObservableReaderFunc = func(io.Reader) func(int64, error) error

type ObservableReader struct {
	io.Reader
	OnRead ObservableReaderFunc
}

func NewObservableReader(r io.Reader, onRead ObservableReaderFunc) io.Reader {
	Assert(func() bool { return r != nil })
	if onRead == nil {
		return r
	}
	return ObservableReader{
		Reader: r,
		OnRead: onRead,
	}
}

func (x ObservableReader) Close() error {
	return CloseReaderIFP(x.Reader)
}
func (x ObservableReader) Read(buf []byte) (n int, err error) {
	onRead := x.OnRead(x.Reader)
	n, err = x.Reader.Read(buf)
	if er := onRead(int64(n), err); er != nil {
		err = er
	}
	return
}
