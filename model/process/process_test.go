package process

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Dispatch(t *testing.T) {
	p := New(1, Spec{Name: "a", Priority: PriorityLow, MemoryMB: 64, Burst: 3}, time.Unix(0, 0))
	assert.Equal(t, StateReady, p.State)
	for i := 0; i < 7; i++ {
		p.Dispatch()
		assert.True(t, p.Preempt())
	}
	assert.Equal(t, 100, p.CPUUsage)
	assert.False(t, p.Preempt(), "ready process cannot be preempted")
}

func TestProcess_Run(t *testing.T) {
	p := New(1, Spec{Burst: 2}, time.Time{})
	assert.False(t, p.Run())
	assert.Equal(t, 1, p.RemainingBurst)
	assert.True(t, p.Run())
	assert.Equal(t, 0, p.RemainingBurst)
}

func TestProcess_Clone(t *testing.T) {
	p := New(7, Spec{Name: "x", Burst: 5}, time.Time{})
	clone := p.Clone()
	clone.RemainingBurst = 1
	assert.Equal(t, 5, p.RemainingBurst)
	assert.Nil(t, (*Process)(nil).Clone())
}

func TestPriority(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    Priority
		expectErr bool
	}{
		{name: "low", input: "low", expect: PriorityLow},
		{name: "mixed case", input: " Medium ", expect: PriorityMedium},
		{name: "high", input: "HIGH", expect: PriorityHigh},
		{name: "unknown", input: "urgent", expectErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := ParsePriority(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
	assert.True(t, PriorityHigh > PriorityMedium && PriorityMedium > PriorityLow)
}

func TestPriority_JSON(t *testing.T) {
	data, err := json.Marshal(Spec{Name: "a", Priority: PriorityHigh})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"priority":"high"`)

	var spec Spec
	require.NoError(t, json.Unmarshal([]byte(`{"priority":"low"}`), &spec))
	assert.Equal(t, PriorityLow, spec.Priority)
	assert.Error(t, json.Unmarshal([]byte(`{"priority":"none"}`), &spec))
}
