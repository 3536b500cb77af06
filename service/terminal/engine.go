package terminal

import (
	"context"

	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/progress"
	"github.com/viant/ossim/service/allocator"
	"github.com/viant/ossim/service/dao"
	"github.com/viant/ossim/service/dao/snapshot"
)

// Engine is the simulation API the terminal drives.
type Engine interface {
	CreateProcess(ctx context.Context, spec process.Spec) (*process.Process, error)
	TerminateProcess(ctx context.Context, id int) error
	Processes(ctx context.Context, parameters ...*dao.Parameter) ([]*process.Process, error)
	SetPolicy(ctx context.Context, name string) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Step(ctx context.Context) (bool, error)
	Memory(ctx context.Context) (*allocator.Snapshot, error)
	Stats(ctx context.Context) (progress.Stats, error)
	SaveSnapshot(ctx context.Context, name string) (*snapshot.Snapshot, error)
}
