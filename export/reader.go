package export

import (
	"context"
	"io"
)

// ContextReader wraps a reader so that stalled reads unblock when the
// context is cancelled. A stalled remote transfer is otherwise only
// bounded by the retry policy.
type ContextReader struct {
	ctx context.Context
	r   io.Reader
}

func NewContextReader(ctx context.Context, r io.Reader) *ContextReader {
	return &ContextReader{
		ctx: ctx,
		r:   r,
	}
}

// Read implements io.Reader#Read(), respecting the ContextReader's
// embedded context. It orphans an active read in a separate goroutine if
// the context finishes early.
func (cr *ContextReader) Read(p []byte) (int, error) {
	type result struct {
		n   int
		err error
	}

	resultChan := make(chan result, 1)

	go func() {
		defer close(resultChan)
		n, err := cr.r.Read(p)
		resultChan <- result{n, err}
	}()

	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	case res := <-resultChan:
		return res.n, res.err
	}
}
