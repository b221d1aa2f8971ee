package base

import (
	"fmt"
	"io"
	"time"
)

var LogBase = NewLogCategory("Base")

var StartedAt = Memoize[time.Time](func() time.Time {
	return time.Now()
})

// Recover is the panic boundary: invariant violations raised below it come
// back as ordinary errors. Disabled in diagnostic builds so a debugger
// sees the original panic site.
func Recover(scope func() error) (result error) {
	if !DEBUG_ENABLED {
		defer func() {
			if err := recover(); err != nil {
				var ok bool
				if result, ok = err.(error); !ok {
					result = fmt.Errorf("%v", err)
				}
			}
		}()
	}
	result = scope()
	return
}

/***************************************
 * IO helpers
 ***************************************/

type WriteReseter interface {
	Reset(io.Writer) error
	io.WriteCloser
}

type ReadReseter interface {
	Reset(io.Reader) error
	io.ReadCloser
}

type Closable interface {
	Close() error
}

type Flushable interface {
	Flush() error
}

func FlushWriterIFP(w io.Writer) (err error) {
	if flush, ok := w.(Flushable); ok {
		err = flush.Flush()
	}
	return
}

func CloseWriterIFP(w io.Writer) (err error) {
	if cls, ok := w.(Closable); ok {
		err = cls.Close()
	}
	return
}

func CloseReaderIFP(r io.Reader) (err error) {
	if cls, ok := r.(Closable); ok {
		err = cls.Close()
	}
	return
}
