// Package task holds the task registry and the resolver that maps command
// words onto it.
//
// A registry is an ordered list of groups. Each group comes from one
// descriptor document (docs/<group>.yaml) and maps canonical task names,
// which may contain spaces, to their help metadata. Resolution walks the
// command words left to right, growing a space-joined candidate one word at
// a time, and stops at the first descriptor whose name or alias equals the
// candidate. Groups are searched in registry order, so a name defined in two
// groups always resolves to the earlier one.
//
// The registry is built once at startup and never mutated afterwards.
package task
