package allocator

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/ossim/model/process"
)

func newProcess(id, memoryMB int) *process.Process {
	return process.New(id, process.Spec{Name: "p", Priority: process.PriorityMedium, MemoryMB: memoryMB, Burst: 1}, time.Time{})
}

func newService(t *testing.T, config Config) *Service {
	srv, err := New(config)
	require.NoError(t, err)
	return srv
}

func TestService_Allocate(t *testing.T) {
	testCases := []struct {
		name        string
		memoryMB    int
		expectRun   []int
		expectUsed  int
		expectError error
	}{
		{name: "exact block", memoryMB: 32, expectRun: []int{0}, expectUsed: 32},
		{name: "rounded up", memoryMB: 150, expectRun: []int{0, 1, 2, 3, 4}, expectUsed: 150},
		{name: "zero memory holds no block", memoryMB: 0, expectRun: nil, expectUsed: 0},
		{name: "whole memory", memoryMB: 1024, expectRun: seq(0, 32), expectUsed: 1024},
		{name: "too large", memoryMB: 1025, expectError: ErrAllocationFailed},
		{name: "negative", memoryMB: -1, expectError: ErrInvalidRequest},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newService(t, DefaultConfig())
			err := srv.Allocate(newProcess(1, tc.memoryMB))
			if tc.expectError != nil {
				assert.True(t, errors.Is(err, tc.expectError), "%v", err)
				assert.Equal(t, 0, srv.UsedMB())
				assert.Empty(t, srv.Owned(1))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectRun, srv.Owned(1))
			assert.Equal(t, tc.expectUsed, srv.UsedMB())
			assert.NoError(t, srv.Verify([]int{1}))
		})
	}
}

func TestService_FirstFit(t *testing.T) {
	srv := newService(t, DefaultConfig())
	// 1 owns blocks 0-1, 2 owns 2-4, 3 owns 5; freeing 2 leaves a hole at 2-4
	require.NoError(t, srv.Allocate(newProcess(1, 64)))
	require.NoError(t, srv.Allocate(newProcess(2, 96)))
	require.NoError(t, srv.Allocate(newProcess(3, 32)))
	srv.Deallocate(2)

	require.NoError(t, srv.Allocate(newProcess(4, 64)))
	assert.Equal(t, []int{2, 3}, srv.Owned(4), "first hole large enough is taken")

	require.NoError(t, srv.Allocate(newProcess(5, 64)))
	assert.Equal(t, []int{6, 7}, srv.Owned(5), "remaining single block hole is skipped")

	require.NoError(t, srv.Allocate(newProcess(6, 10)))
	assert.Equal(t, []int{4}, srv.Owned(6))
	assert.NoError(t, srv.Verify([]int{1, 3, 4, 5, 6}))
}

func TestService_AllocateTwice(t *testing.T) {
	srv := newService(t, DefaultConfig())
	require.NoError(t, srv.Allocate(newProcess(1, 32)))
	err := srv.Allocate(newProcess(1, 32))
	assert.True(t, errors.Is(err, ErrAlreadyAllocated))
	assert.Equal(t, []int{0}, srv.Owned(1))
}

func TestService_Exhaustion(t *testing.T) {
	srv := newService(t, DefaultConfig())
	for id := 1; id <= 32; id++ {
		require.NoError(t, srv.Allocate(newProcess(id, 32)))
	}
	for _, memoryMB := range []int{1, 32, 100} {
		err := srv.Allocate(newProcess(100, memoryMB))
		assert.True(t, errors.Is(err, ErrAllocationFailed))
	}
	snapshot := srv.Snapshot()
	assert.Equal(t, 0, snapshot.FreeBlocks())
	assert.Equal(t, 100, snapshot.UsagePercent)
}

func TestService_Fragmentation(t *testing.T) {
	srv := newService(t, DefaultConfig())
	for id := 1; id <= 32; id++ {
		require.NoError(t, srv.Allocate(newProcess(id, 32)))
	}
	for id := 1; id <= 32; id += 2 {
		srv.Deallocate(id)
	}
	assert.Equal(t, 16, srv.Snapshot().FreeBlocks())
	err := srv.Allocate(newProcess(100, 64))
	assert.True(t, errors.Is(err, ErrAllocationFailed), "16 free blocks but no two adjacent")
	assert.NoError(t, srv.Allocate(newProcess(101, 32)))
}

func TestService_Deallocate(t *testing.T) {
	t.Run("block accounting reconciles from occupied blocks", func(t *testing.T) {
		srv := newService(t, DefaultConfig())
		require.NoError(t, srv.Allocate(newProcess(1, 50)))
		require.NoError(t, srv.Allocate(newProcess(2, 70)))
		assert.Equal(t, 120, srv.UsedMB())
		srv.Deallocate(1)
		assert.Equal(t, 96, srv.UsedMB(), "3 of 32 blocks of 1024MB")
		assert.Empty(t, srv.Owned(1))
	})
	t.Run("exact accounting subtracts requests", func(t *testing.T) {
		config := DefaultConfig()
		config.Accounting = AccountingExact
		srv := newService(t, config)
		require.NoError(t, srv.Allocate(newProcess(1, 50)))
		require.NoError(t, srv.Allocate(newProcess(2, 70)))
		srv.Deallocate(1)
		assert.Equal(t, 70, srv.UsedMB())
	})
	t.Run("unknown id is a no-op", func(t *testing.T) {
		srv := newService(t, DefaultConfig())
		require.NoError(t, srv.Allocate(newProcess(1, 50)))
		before := srv.Snapshot()
		srv.Deallocate(42)
		assert.Equal(t, before, srv.Snapshot())
	})
	t.Run("owner without blocks keeps used memory", func(t *testing.T) {
		testCases := []struct {
			accounting Accounting
			expectUsed int
		}{
			{accounting: AccountingBlock, expectUsed: 100},
			{accounting: AccountingExact, expectUsed: 100},
		}
		for _, tc := range testCases {
			config := DefaultConfig()
			config.Accounting = tc.accounting
			srv := newService(t, config)
			require.NoError(t, srv.Allocate(newProcess(1, 100)))
			require.NoError(t, srv.Allocate(newProcess(2, 0)))
			before := srv.Snapshot()
			srv.Deallocate(2)
			assert.Equal(t, tc.expectUsed, srv.UsedMB(), string(tc.accounting))
			assert.Equal(t, before, srv.Snapshot(), string(tc.accounting))
			assert.NoError(t, srv.Allocate(newProcess(2, 0)), "request entry released")
		}
	})
	t.Run("freed blocks are reusable", func(t *testing.T) {
		srv := newService(t, DefaultConfig())
		for id := 1; id <= 32; id++ {
			require.NoError(t, srv.Allocate(newProcess(id, 32)))
		}
		srv.Deallocate(7)
		require.NoError(t, srv.Allocate(newProcess(33, 32)))
		assert.Equal(t, []int{6}, srv.Owned(33))
	})
}

func TestService_Churn(t *testing.T) {
	srv := newService(t, DefaultConfig())
	rng := rand.New(rand.NewSource(7))
	live := map[int]bool{}
	nextID := 1
	for i := 0; i < 2000; i++ {
		if len(live) > 0 && rng.Intn(3) == 0 {
			for id := range live {
				srv.Deallocate(id)
				delete(live, id)
				break
			}
		} else {
			id := nextID
			nextID++
			if err := srv.Allocate(newProcess(id, rng.Intn(160))); err == nil {
				live[id] = true
			} else {
				require.True(t, errors.Is(err, ErrAllocationFailed))
			}
		}
		ids := make([]int, 0, len(live))
		for id := range live {
			ids = append(ids, id)
		}
		require.NoError(t, srv.Verify(ids))
		for _, owner := range srv.Snapshot().Blocks {
			if owner != 0 {
				require.True(t, live[owner], "block owned by dead process %d", owner)
			}
		}
	}
}

func TestService_Verify(t *testing.T) {
	srv := newService(t, DefaultConfig())
	require.NoError(t, srv.Allocate(newProcess(1, 64)))
	assert.Error(t, srv.Verify(nil), "dangling allocation")
	assert.Error(t, srv.Verify([]int{1, 2}), "registered without allocation")
	srv.blocks[10] = 1
	assert.Error(t, srv.Verify([]int{1}), "non contiguous")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{TotalMB: 0, Blocks: 32}.Validate())
	assert.Error(t, Config{TotalMB: 1024, Blocks: 0}.Validate())
	assert.Error(t, Config{TotalMB: 1024, Blocks: 32, Accounting: "sum"}.Validate())
	_, err := New(Config{})
	assert.Error(t, err)
}

func seq(from, to int) []int {
	var ret []int
	for i := from; i < to; i++ {
		ret = append(ret, i)
	}
	return ret
}
