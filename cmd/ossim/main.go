package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/viant/ossim"
	"github.com/viant/ossim/service/event"
	"github.com/viant/ossim/service/terminal"
)

func main() {
	var (
		configURL = flag.String("config", "", "YAML config URL (file path or any afs URL)")
		policy    = flag.String("policy", "", "initial scheduling policy: fcfs, sjf or priority")
		manual    = flag.Bool("manual", false, "disable real-time ticks; advance with 'step'")
		verbose   = flag.Bool("v", false, "log scheduler events at debug level")
		traceFile = flag.String("trace", "", "write OpenTelemetry spans to file")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Interactive process scheduling and memory allocation simulator.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := run(ctx, *configURL, *policy, *manual, *verbose, *traceFile, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, configURL, policy string, manual, verbose bool, traceFile string, in io.Reader, out io.Writer) error {
	config := ossim.DefaultConfig()
	if configURL != "" {
		loaded, err := ossim.LoadConfig(ctx, configURL)
		if err != nil {
			return err
		}
		config = loaded
	}
	if policy != "" {
		config.Scheduler.Policy = policy
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	options := []ossim.Option{ossim.WithConfig(config), ossim.WithLogger(logger)}
	if manual {
		options = append(options, ossim.WithManualClock())
	}
	if verbose {
		options = append(options, ossim.WithEventListener(func(e *event.Event) {
			logger.Debug("event", "kind", e.Kind.String(), "pid", e.ProcessID, "tick", e.Tick, "policy", e.Policy)
		}))
	}
	if traceFile != "" {
		options = append(options, ossim.WithTracing("ossim", traceFile))
	}
	srv, err := ossim.New(options...)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = srv.Shutdown(shutdownCtx)
	}()

	shell := terminal.New(srv.Runtime())
	fmt.Fprintln(out, "ossim - type 'help' for available commands, 'exit' to quit")
	lines := readLines(ctx, in)
	for {
		fmt.Fprint(out, "$ ")
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case line, ok = <-lines:
			if !ok {
				return nil
			}
		}
		if cmd := strings.TrimSpace(line); cmd == "exit" || cmd == "quit" {
			return nil
		}
		output, err := shell.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		if output != "" {
			fmt.Fprintln(out, strings.TrimRight(output, "\n"))
		}
	}
}

// readLines streams lines of in until it is exhausted or ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
