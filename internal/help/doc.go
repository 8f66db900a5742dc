// Package help renders the CLI's help and version output: the top-level
// summary built from the task registry, the static extended walkthrough,
// and per-task help pages.
package help
