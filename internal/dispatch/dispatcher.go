package dispatch

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/quocvuong92/monaca-cli/internal/logging"
	"github.com/quocvuong92/monaca-cli/internal/task"
)

// Flags are the global flags the dispatcher itself interprets.
type Flags struct {
	Version bool
	Help    bool
	All     bool
}

// Request is one parsed command line.
type Request struct {
	Args    []string
	Flags   Flags
	Options Options
}

// HelpRenderer writes help and version text.
type HelpRenderer interface {
	Version(w io.Writer)
	Top(w io.Writer, all, extended bool)
	Task(w io.Writer, d *task.Descriptor)
}

// Dispatcher resolves and runs tasks. All collaborators are explicit so a
// dispatcher can be built per test without global state.
type Dispatcher struct {
	Registry     *task.Registry
	Modules      *Table
	Help         HelpRenderer
	Out          io.Writer
	Info         Info
	Requirements map[string]Requirement
	Log          *logging.Logger

	// MaxChain bounds the number of chained runs after the first one.
	// Zero means unbounded.
	MaxChain int
}

// pending is a task waiting to run: resolved name and its own args.
type pending struct {
	res     task.Resolved
	args    []string
	chained bool
}

// Dispatch handles one request. A nil error means exit status 0, including
// when help was shown instead of running a task.
//
// Help selection: --help (or -h) with words that resolve prints that task's
// help; --help alone, --help with unresolved words, or "help" as the first
// word prints the extended top-level help.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) error {
	log := d.logger().WithFields(logging.Fields{"dispatch_id": uuid.New().String()})
	args := req.Args

	if (len(args) > 0 && args[0] == "version") || req.Flags.Version {
		d.Help.Version(d.Out)
		return nil
	}

	switch {
	case len(args) == 0 && !req.Flags.Help:
		d.Help.Top(d.Out, req.Flags.All, false)
		return nil
	case len(args) == 0 || args[0] == "help":
		d.Help.Top(d.Out, req.Flags.All, true)
		return nil
	}

	res, consumed := d.Registry.ResolveN(args)
	if !res.Found() {
		if req.Flags.Help {
			d.Help.Top(d.Out, req.Flags.All, true)
			return nil
		}
		log.Debug("task not resolved", logging.Fields{"input": res.Name})
		return &ResolutionError{Input: res.Name, Suggestions: d.Registry.Completions(res.Name)}
	}

	queue := []pending{{res: res, args: args[consumed:]}}
	chained := 0

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		if p.chained {
			chained++
			if d.MaxChain > 0 && chained > d.MaxChain {
				return fmt.Errorf("%w (%d): stopped before %q", ErrChainTooDeep, d.MaxChain, p.res.Name)
			}
		}

		if d.wantsHelp(p, req) {
			if desc, ok := d.Registry.Descriptor(p.res); ok {
				d.Help.Task(d.Out, desc)
			}
			return nil
		}

		next, err := d.run(ctx, log, p, req.Options)
		if err != nil {
			return err
		}
		if next == nil {
			continue
		}

		np, err := d.chain(next)
		if err != nil {
			return err
		}
		queue = append(queue, np)
	}

	return nil
}

// wantsHelp reports whether the task's help replaces running it.
func (d *Dispatcher) wantsHelp(p pending, req Request) bool {
	if req.Flags.Help && !p.chained {
		return true
	}
	rule, ok := d.Requirements[p.res.Name]
	return ok && !rule.satisfied(p.args, req.Options)
}

func (d *Dispatcher) run(ctx context.Context, log *logging.FieldLogger, p pending, opts Options) (*NextTask, error) {
	module, ok := d.Modules.Lookup(p.res.Set)
	if !ok {
		return nil, fmt.Errorf("no task module registered for group %q", p.res.Set)
	}

	fields := logging.Fields{"task": p.res.Name, "set": p.res.Set, "args": len(p.args)}
	log.Debug("running task", fields)

	result, err := module.Run(ctx, p.res.Name, Invocation{
		Info:    d.Info,
		Args:    p.args,
		Options: opts,
	})
	if err != nil {
		log.Debug("task failed", fields, logging.Fields{"error": err.Error()})
		return nil, &ModuleError{Task: p.res.Name, Set: p.res.Set, Err: err}
	}
	if result == nil || result.NextTask == nil {
		return nil, nil
	}

	log.Debug("task chained", fields, logging.Fields{"next": result.NextTask.Name, "next_set": result.NextTask.Set})
	return result.NextTask, nil
}

// chain turns a NextTask into a queued run.
func (d *Dispatcher) chain(next *NextTask) (pending, error) {
	if next.Set != "" {
		return pending{
			res:     task.Resolved{Name: next.Name, Set: next.Set},
			args:    next.Args,
			chained: true,
		}, nil
	}

	words := append(strings.Fields(next.Name), next.Args...)
	res, consumed := d.Registry.ResolveN(words)
	if !res.Found() {
		return pending{}, &ResolutionError{Input: res.Name}
	}
	return pending{res: res, args: words[consumed:], chained: true}, nil
}

func (d *Dispatcher) logger() *logging.Logger {
	if d.Log == nil {
		return logging.DefaultLogger
	}
	return d.Log
}
