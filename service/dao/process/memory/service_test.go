package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/dao/criteria"
)

func ids(processes []*process.Process) []int {
	var ret []int
	for _, p := range processes {
		ret = append(ret, p.ID)
	}
	return ret
}

func TestService_Order(t *testing.T) {
	ctx := context.Background()
	srv := New()
	for _, id := range []int{5, 2, 9} {
		require.NoError(t, srv.Save(ctx, process.New(id, process.Spec{Burst: 1}, time.Time{})))
	}
	list, err := srv.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2, 9}, ids(list), "admission order is kept")

	updated := process.New(2, process.Spec{Burst: 4}, time.Time{})
	require.NoError(t, srv.Save(ctx, updated))
	list, _ = srv.List(ctx)
	assert.Equal(t, []int{5, 2, 9}, ids(list), "replacing keeps position")
	assert.Equal(t, 4, list[1].RemainingBurst)

	require.NoError(t, srv.Delete(ctx, 5))
	require.NoError(t, srv.Save(ctx, process.New(5, process.Spec{}, time.Time{})))
	list, _ = srv.List(ctx)
	assert.Equal(t, []int{2, 9, 5}, ids(list), "re-admission goes to the tail")
	assert.Equal(t, 3, srv.Len())
}

func TestService_Filter(t *testing.T) {
	ctx := context.Background()
	srv := New()
	running := process.New(1, process.Spec{}, time.Time{})
	running.Dispatch()
	require.NoError(t, srv.Save(ctx, running))
	require.NoError(t, srv.Save(ctx, process.New(2, process.Spec{}, time.Time{})))

	list, err := srv.List(ctx, dao.NewParameter(criteria.FieldState, string(process.StateReady)))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, ids(list))
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()
	srv := New()
	assert.True(t, errors.Is(srv.Save(ctx, nil), dao.ErrNilEntity))
	assert.True(t, errors.Is(srv.Save(ctx, &process.Process{}), dao.ErrInvalidID))
	_, err := srv.Load(ctx, 1)
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	assert.True(t, errors.Is(srv.Delete(ctx, 1), dao.ErrNotFound))
	_, err = srv.Load(ctx, 0)
	assert.True(t, errors.Is(err, dao.ErrInvalidID))
}
