package engine

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_RealAddrInUse(t *testing.T) {
	t.Parallel()

	occupied, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer occupied.Close()

	_, err = net.Listen("tcp", occupied.Addr().String())
	require.Error(t, err)

	assert.Equal(t, CodeAddrInUse, Classify(err))

	wrapped := Wrap("listen", err)
	assert.True(t, IsAddrInUse(wrapped))
	assert.ErrorIs(t, wrapped, err)
}

func TestClassify_IgnoresMessageText(t *testing.T) {
	t.Parallel()

	// A message that merely looks like EADDRINUSE carries no errno.
	err := errors.New("listen tcp :8443: bind: address already in use")
	assert.Equal(t, CodeUnknown, Classify(err))
	assert.False(t, IsAddrInUse(Wrap("listen", err)))
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap("listen", nil))
	})

	t.Run("existing engine error is preserved", func(t *testing.T) {
		orig := &EngineError{Code: CodeTLS, Op: "tls setup", Err: errors.New("bad key")}
		got := Wrap("listen", fmt.Errorf("outer: %w", orig))

		var engErr *EngineError
		require.True(t, errors.As(got, &engErr))
		assert.Same(t, orig, engErr)
		assert.Equal(t, CodeTLS, CodeOf(got))
	})

	t.Run("message includes op and code", func(t *testing.T) {
		err := &EngineError{Code: CodeServe, Op: "serve", Err: errors.New("boom")}
		assert.Equal(t, "serve: boom (SERVE)", err.Error())
	})
}

func TestCodeOf_PlainError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, CodeUnknown, CodeOf(errors.New("plain")))
}

func TestEventConstructors(t *testing.T) {
	t.Parallel()

	ev := Started(3)
	assert.Equal(t, EventStarted, ev.Kind)
	assert.Equal(t, 3, ev.Attempt)
	assert.Equal(t, "started", ev.Kind.String())

	fail := Failed(4, "listen", errors.New("nope"))
	assert.Equal(t, EventFailed, fail.Kind)
	assert.Equal(t, 4, fail.Attempt)
	assert.Equal(t, CodeUnknown, CodeOf(fail.Err))
}
