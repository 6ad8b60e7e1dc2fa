package cli

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// syncBuffer provides thread-safe access to a bytes.Buffer.
type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestNewInterruptHandler(t *testing.T) {
	tests := []struct {
		writer io.Writer
		name   string
	}{
		{
			name:   "with custom writer",
			writer: &bytes.Buffer{},
		},
		{
			name:   "with nil writer",
			writer: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewInterruptHandler(tt.writer, "Import", "")
			assert.NotNil(t, handler)
			assert.NotNil(t, handler.writer)
			assert.False(t, handler.WasInterrupted())
		})
	}
}

func TestInterruptHandler_Interrupt(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Import", "Imported expenses are kept; re-run to continue.")

	ctx := handler.HandleInterrupts(context.Background())
	assert.NoError(t, ctx.Err())

	handler.Interrupt()
	handler.Interrupt()

	<-ctx.Done()
	assert.True(t, handler.WasInterrupted())
	assert.Contains(t, output.String(), "Import interrupted!")
	assert.Contains(t, output.String(), "re-run to continue")
	assert.Equal(t, 1, bytes.Count([]byte(output.String()), []byte("interrupted!")), "notice is printed once")
}

func TestInterruptHandler_ParentCancel(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Export", "")

	parent, cancel := context.WithCancel(context.Background())
	ctx := handler.HandleInterrupts(parent)
	cancel()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}

func TestInterruptHandler_Stop(t *testing.T) {
	output := &syncBuffer{}
	handler := NewInterruptHandler(output, "Import", "")

	ctx := handler.HandleInterrupts(context.Background())
	handler.Stop()

	<-ctx.Done()
	assert.False(t, handler.WasInterrupted())
	assert.Empty(t, output.String())
}
