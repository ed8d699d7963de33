package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCompletionResumesOnce(t *testing.T) {
	comp := newCompletion[int]()

	require.True(t, comp.resume(1))
	require.False(t, comp.resume(2))
	require.False(t, comp.resume(3))

	v, err := comp.await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestCompletionResumeBeforeAwait(t *testing.T) {
	comp := newCompletion[string]()
	require.True(t, comp.resume("done"))

	v, err := comp.await(context.Background())
	require.NoError(t, err)
	require.Equal(t, "done", v)
}

func TestCompletionAwaitHonorsContext(t *testing.T) {
	comp := newCompletion[int]()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := comp.await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompletionResumeFromAnotherGoroutine(t *testing.T) {
	comp := newCompletion[int]()

	go func() {
		time.Sleep(5 * time.Millisecond)
		comp.resume(42)
	}()

	v, err := comp.await(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, v)
}
