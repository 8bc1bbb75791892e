package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testSpinner(ctx context.Context, msg string) (*Spinner, *bytes.Buffer) {
	var buf bytes.Buffer
	return newSpinnerWithContext(ctx, &buf, msg), &buf
}

func TestSpinnerRendersAndClears(t *testing.T) {
	s, buf := testSpinner(context.Background(), "Downloading manifest")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	assert.Contains(t, out, "Downloading manifest")
	assert.True(t, strings.HasSuffix(out, "\r"), "line should be cleared on stop")
	assert.False(t, s.Cancelled())
}

func TestSpinnerParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, _ := testSpinner(ctx, "Testing with context...")
	s.Start()

	cancel()
	time.Sleep(50 * time.Millisecond)

	assert.True(t, s.Cancelled())
	s.Stop()
}

func TestSpinnerParentTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s, _ := testSpinner(ctx, "Testing with timeout...")
	s.Start()
	time.Sleep(60 * time.Millisecond)

	assert.True(t, s.Cancelled())
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	s, _ := testSpinner(context.Background(), "Testing idempotent stop...")
	s.Start()
	s.Stop()
	s.Stop()
	s.StopWithSuccess("Done")
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s, buf := testSpinner(context.Background(), "never started")
	s.StopWithError("Failed")
	assert.Empty(t, buf.String())
}

func TestSpinnerDefaultsToStderr(t *testing.T) {
	s := newSpinnerWithContext(context.Background(), nil, "x")
	assert.Equal(t, os.Stderr, s.out)
	s.Stop()
}
