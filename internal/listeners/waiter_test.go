package listeners

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunWaiterReturnsPromptlyOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- RunWaiter(ctx, "dot") }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunWaiter did not return after cancellation")
	}
}

func TestRunWaiterBlocksUntilCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- RunWaiter(ctx, "doh") }()

	select {
	case <-done:
		t.Fatal("RunWaiter returned before cancellation")
	case <-time.After(100 * time.Millisecond):
	}
}
