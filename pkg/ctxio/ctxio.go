// Package ctxio связывает потоки io с отменой контекста: каждое чтение сначала
// проверяет ctx, поэтому разрыв HTTP-запроса прерывает копирование на ближайшем Read.
package ctxio

import (
	"context"
	"io"
	"sync"
)

type reader struct {
	ctx context.Context
	r   io.Reader
}

// Reader возвращает io.Reader, который прекращает чтение после отмены ctx.
func Reader(ctx context.Context, r io.Reader) io.Reader {
	return &reader{ctx: ctx, r: r}
}

func (r *reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

type readCloser struct {
	reader
	rc   io.ReadCloser
	once sync.Once
	err  error
	stop func() bool
}

// ReadCloser оборачивает rc так же, как Reader, и дополнительно закрывает rc при отмене ctx,
// чтобы освободить соединение или файл даже если потребитель завис на Read.
func ReadCloser(ctx context.Context, rc io.ReadCloser) io.ReadCloser {
	out := &readCloser{reader: reader{ctx: ctx, r: rc}, rc: rc}
	out.stop = context.AfterFunc(ctx, out.release)
	return out
}

func (r *readCloser) release() {
	r.once.Do(func() {
		r.err = r.rc.Close()
	})
}

func (r *readCloser) Close() error {
	r.stop()
	r.release()
	return r.err
}
