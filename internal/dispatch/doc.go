// Package dispatch turns a parsed command line into task runs.
//
// The Dispatcher applies a fixed precedence: version, top-level help,
// resolution, per-task help (explicit --help or missing required
// arguments), and finally execution of the task module that owns the
// resolved group. A module may answer with a NextTask, which is queued and
// dispatched without looking at the original command line again.
package dispatch
