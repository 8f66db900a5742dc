// Package cmd implements the monaca command line entry point.
//
// # Architecture
//
// The root cobra command has no subcommands. It parses the global flags and
// the task flags, then hands the positional words to a dispatch.Dispatcher
// built for this one run:
//
//   - config.Config is validated (flags > environment > config file)
//   - the logger is configured from it
//   - task descriptors are loaded from the embedded task files
//   - a cloud client, command runner and prompter back the task modules
//
// # Help and version
//
// cobra's own help is replaced: --help and -h reach the dispatcher through
// SetHelpFunc so that "monaca --help remote build" prints the help of the
// resolved task. --version and the "version" word print the client version.
//
// # Exit status
//
// Run returns 0 when the task (or the help it printed instead) finished and 1
// on any error, which is printed to stderr first.
package cmd
