package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	script := strings.Join([]string{
		"new web high 64 1",
		"new db low 32 2",
		"ps",
		"start",
		"step",
		"kill 2",
		"mem",
		"bogus",
		"policy lottery",
		"exit",
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), "", "priority", true, false, "", strings.NewReader(script), &out))

	text := out.String()
	assert.Contains(t, text, "Process 1 created: web (high, 64MB, burst 1)")
	assert.Contains(t, text, "1\tweb\t\tready\t\t0%\t64MB")
	assert.Contains(t, text, "Advanced 1 tick(s)")
	assert.Contains(t, text, "Process 2 terminated")
	assert.Contains(t, text, "Memory: 0/1024MB (0%), 32 free blocks of 32MB")
	assert.Contains(t, text, "Command not found: bogus.")
	assert.Contains(t, text, "Error: policy: unknown scheduling policy")
}

type endlessInput struct{}

func (endlessInput) Read(p []byte) (int, error) {
	return copy(p, "ps\n"), nil
}

func TestReadLines_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	lines := readLines(ctx, endlessInput{})
	assert.Equal(t, "ps", <-lines)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-lines:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("reader kept running after cancel")
		}
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, "", "", true, false, "", endlessInput{}, &out)
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}
