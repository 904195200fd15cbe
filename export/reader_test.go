package export

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingReader never returns until released.
type blockingReader struct {
	release chan struct{}
}

func (br *blockingReader) Read(p []byte) (int, error) {
	<-br.release
	return 0, io.EOF
}

func TestContextReaderPassesThrough(t *testing.T) {
	cr := NewContextReader(context.Background(), strings.NewReader("hello"))

	data, err := io.ReadAll(cr)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestContextReaderUnblocksOnCancel(t *testing.T) {
	br := &blockingReader{release: make(chan struct{})}
	defer close(br.release)

	ctx, cancel := context.WithCancel(context.Background())
	cr := NewContextReader(ctx, br)

	errs := make(chan error, 1)
	go func() {
		_, err := cr.Read(make([]byte, 16))
		errs <- err
	}()

	cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("read did not unblock after cancellation")
	}
}
