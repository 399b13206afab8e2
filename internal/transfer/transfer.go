// Package transfer copies a byte stream from any provider into any other.
package transfer

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/slmtnm/s3tui/internal/storage"
)

// DefaultChunkSize is the read buffer used when the source does not define its own chunking.
const DefaultChunkSize = 32 * 1024

// Progress is a snapshot of a running copy
type Progress struct {
	Transferred int64
	// Total is the size hint of the source, -1 when unknown
	Total int64
}

// Fraction returns the completed share in [0, 1], or 0 when the total is unknown
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Transferred) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

type options struct {
	chunkSize  int
	maxRetries uint64
	interval   time.Duration
	onProgress func(Progress)
}

// Option tunes Copy
type Option func(*options)

// WithChunkSize sets the read buffer size
func WithChunkSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithRetries bounds how often one chunk is rewritten after a transient failure
func WithRetries(n uint64, initialInterval time.Duration) Option {
	return func(o *options) {
		o.maxRetries = n
		o.interval = initialInterval
	}
}

// WithProgress registers a callback run after every chunk, on the calling goroutine
func WithProgress(fn func(Progress)) Option {
	return func(o *options) {
		o.onProgress = fn
	}
}

// Copy moves src into dst chunk by chunk. A transient write failure retries the
// rest of the same chunk; any other failure stops the copy and is returned as is.
// The destination is left as written on failure.
func Copy(ctx context.Context, dst io.Writer, src io.Reader, opts ...Option) (int64, error) {
	o := options{
		chunkSize:  DefaultChunkSize,
		maxRetries: 5,
		interval:   20 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(&o)
	}

	progress := Progress{Total: -1}
	if sized, ok := src.(interface{ Size() int64 }); ok {
		progress.Total = sized.Size()
	}

	buf := make([]byte, o.chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return progress.Transferred, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if err := writeChunk(ctx, dst, buf[:n], o); err != nil {
				return progress.Transferred, err
			}
			progress.Transferred += int64(n)
			if o.onProgress != nil {
				o.onProgress(progress)
			}
		}

		if errors.Is(readErr, io.EOF) {
			return progress.Transferred, nil
		}
		if readErr != nil {
			return progress.Transferred, readErr
		}
	}
}

// writeChunk writes all of chunk, resuming after transient interruptions
func writeChunk(ctx context.Context, dst io.Writer, chunk []byte, o options) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = o.interval
	policy.MaxElapsedTime = 0

	pending := chunk
	operation := func() error {
		n, err := dst.Write(pending)
		pending = pending[n:]
		if err == nil && len(pending) > 0 {
			err = io.ErrShortWrite
		}
		if err == nil {
			return nil
		}
		if storage.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, o.maxRetries), ctx))
}
