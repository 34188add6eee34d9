package utils

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpinner_ConcurrentStartStop(t *testing.T) {
	s := NewSpinner("working", time.Millisecond, false)
	s.writer = io.Discard

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.Start()
				s.SetStopMsg("done")
				s.Stop()
			}
		}()
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.False(t, s.running)
}

func TestSpinner_PrintsStopMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("working", time.Millisecond, false)
	s.writer = &buf

	s.Start()
	time.Sleep(5 * time.Millisecond)
	s.SetStopMsg("finished")
	s.Stop()
	s.Stop()

	out := buf.String()
	assert.True(t, strings.HasSuffix(out, "finished"))
	assert.Equal(t, 1, strings.Count(out, "finished"))
}
