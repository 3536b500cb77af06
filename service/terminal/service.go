package terminal

import (
	"context"
	"fmt"
	"strings"

	"github.com/viant/ossim/model/process"
	"github.com/viant/toolbox"
)

// ClearScreen is the output of the clear command.
const ClearScreen = "\033[H\033[2J"

const helpText = `
Available commands:
  ps                                 - List all processes
  kill <pid>                         - Terminate a process
  clear                              - Clear terminal
  help                               - Show this help message
  new [name] [prio] [mem] [burst]    - Create a process (missing values are random)
  start                              - Start scheduling
  stop                               - Stop scheduling
  policy <fcfs|sjf|priority>         - Switch scheduling policy
  step [n]                           - Deliver n pending ticks (default 1)
  mem                                - Show memory blocks
  stats                              - Show scheduler counters
  save <name>                        - Save a snapshot
`

// Service interprets terminal command lines
type Service struct {
	engine Engine
}

// New creates a terminal bound to engine.
func New(engine Engine) *Service {
	return &Service{engine: engine}
}

// Execute runs a single command line and returns its output. Empty lines
// produce no output. Engine failures are returned as errors.
func (s *Service) Execute(ctx context.Context, line string) (string, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return "", nil
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]
	switch cmd {
	case "help":
		return helpText, nil
	case "ps":
		return s.ps(ctx)
	case "kill":
		return s.kill(ctx, args)
	case "clear":
		return ClearScreen, nil
	case "new":
		return s.create(ctx, args)
	case "start":
		if err := s.engine.Start(ctx); err != nil {
			return "", err
		}
		return "Scheduler started", nil
	case "stop":
		if err := s.engine.Stop(ctx); err != nil {
			return "", err
		}
		return "Scheduler stopped", nil
	case "policy":
		if len(args) != 1 {
			return "Usage: policy <fcfs|sjf|priority>", nil
		}
		if err := s.engine.SetPolicy(ctx, args[0]); err != nil {
			return "", err
		}
		return fmt.Sprintf("Policy set to %s", strings.ToLower(args[0])), nil
	case "step":
		return s.step(ctx, args)
	case "mem":
		return s.memory(ctx)
	case "stats":
		return s.stats(ctx)
	case "save":
		if len(args) != 1 {
			return "Usage: save <name>", nil
		}
		if _, err := s.engine.SaveSnapshot(ctx, args[0]); err != nil {
			return "", err
		}
		return fmt.Sprintf("Snapshot %s saved", args[0]), nil
	}
	return fmt.Sprintf("Command not found: %s. Type 'help' for available commands.", cmd), nil
}

func (s *Service) ps(ctx context.Context) (string, error) {
	processes, err := s.engine.Processes(ctx)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("PID\tNAME\t\tSTATUS\t\tCPU\tMEMORY\n")
	for _, p := range processes {
		fmt.Fprintf(&sb, "%d\t%s\t\t%s\t\t%d%%\t%dMB\n", p.ID, p.Name, p.State, p.CPUUsage, p.MemoryMB)
	}
	return sb.String(), nil
}

func (s *Service) kill(ctx context.Context, args []string) (string, error) {
	pid := 0
	if len(args) > 0 {
		pid, _ = toolbox.ToInt(args[0])
	}
	if pid <= 0 {
		return "Usage: kill <pid>", nil
	}
	if err := s.engine.TerminateProcess(ctx, pid); err != nil {
		return "", err
	}
	return fmt.Sprintf("Process %d terminated", pid), nil
}

func (s *Service) create(ctx context.Context, args []string) (string, error) {
	var spec process.Spec
	if len(args) > 0 {
		spec.Name = args[0]
	}
	if len(args) > 1 {
		priority, err := process.ParsePriority(args[1])
		if err != nil {
			return "Usage: new [name] [low|medium|high] [memMB] [burst]", nil
		}
		spec.Priority = priority
	}
	if len(args) > 2 {
		memoryMB, err := toolbox.ToInt(args[2])
		if err != nil || memoryMB <= 0 {
			return "Usage: new [name] [low|medium|high] [memMB] [burst]", nil
		}
		spec.MemoryMB = memoryMB
	}
	if len(args) > 3 {
		burst, err := toolbox.ToInt(args[3])
		if err != nil || burst <= 0 {
			return "Usage: new [name] [low|medium|high] [memMB] [burst]", nil
		}
		spec.Burst = burst
	}
	p, err := s.engine.CreateProcess(ctx, spec)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Process %d created: %s (%s, %dMB, burst %d)", p.ID, p.Name, p.Priority, p.MemoryMB, p.RemainingBurst), nil
}

func (s *Service) step(ctx context.Context, args []string) (string, error) {
	n := 1
	if len(args) > 0 {
		value, err := toolbox.ToInt(args[0])
		if err != nil || value <= 0 {
			return "Usage: step [n]", nil
		}
		n = value
	}
	delivered := 0
	for ; delivered < n; delivered++ {
		fired, err := s.engine.Step(ctx)
		if err != nil {
			return "", err
		}
		if !fired {
			break
		}
	}
	if delivered == 0 {
		return "No tick pending", nil
	}
	return fmt.Sprintf("Advanced %d tick(s)", delivered), nil
}

func (s *Service) memory(ctx context.Context) (string, error) {
	snapshot, err := s.engine.Memory(ctx)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Memory: %d/%dMB (%d%%), %d free blocks of %.0fMB\n",
		snapshot.UsedMB, snapshot.TotalMB, snapshot.UsagePercent, snapshot.FreeBlocks(), snapshot.BlockSizeMB)
	for i, owner := range snapshot.Blocks {
		if owner == 0 {
			sb.WriteString("   .")
		} else {
			fmt.Fprintf(&sb, "%4d", owner)
		}
		if (i+1)%8 == 0 {
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

func (s *Service) stats(ctx context.Context) (string, error) {
	stats, err := s.engine.Stats(ctx)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "ticks: %d\n", stats.Ticks)
	fmt.Fprintf(&sb, "dispatches: %d\n", stats.Dispatches)
	fmt.Fprintf(&sb, "context switches: %d\n", stats.ContextSwitches)
	fmt.Fprintf(&sb, "preemptions: %d\n", stats.Preemptions)
	fmt.Fprintf(&sb, "admitted: %d\n", stats.Admitted)
	fmt.Fprintf(&sb, "rejected: %d\n", stats.Rejected)
	fmt.Fprintf(&sb, "completed: %d\n", stats.Completed)
	fmt.Fprintf(&sb, "killed: %d\n", stats.Killed)
	return sb.String(), nil
}
