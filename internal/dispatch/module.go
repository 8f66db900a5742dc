package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Info is static client metadata handed to every task run.
type Info struct {
	ClientType    string
	ClientVersion string
}

// Options holds task-specific flags that were set on the command line,
// keyed by flag name. Boolean flags are stored as "true".
type Options map[string]string

// String returns the flag value or "".
func (o Options) String(name string) string {
	return o[name]
}

// Bool reports whether a boolean flag was set to a true value.
func (o Options) Bool(name string) bool {
	v, ok := o[name]
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Int returns the flag value as an int, or def when unset or malformed.
func (o Options) Int(name string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(o[name])); err == nil {
		return n
	}
	return def
}

// Invocation is everything a module sees for one run.
type Invocation struct {
	Info    Info
	Args    []string // positional args after the task words
	Options Options
}

// NextTask asks the dispatcher to run another task after the current one.
// With Set empty, Name is resolved like user input.
type NextTask struct {
	Name string
	Set  string
	Args []string
}

// Result is what a module returns on success. A nil Result ends the chain.
type Result struct {
	NextTask *NextTask
}

// Module runs the tasks of one group.
type Module interface {
	Run(ctx context.Context, name string, inv Invocation) (*Result, error)
}

// ModuleFunc adapts a function to Module.
type ModuleFunc func(ctx context.Context, name string, inv Invocation) (*Result, error)

// Run calls f.
func (f ModuleFunc) Run(ctx context.Context, name string, inv Invocation) (*Result, error) {
	return f(ctx, name, inv)
}

// Table maps group keys to the modules that implement them.
type Table struct {
	modules map[string]Module
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{modules: make(map[string]Module)}
}

// Register binds a module to a group key. It panics if key is taken.
func (t *Table) Register(key string, m Module) {
	if _, exists := t.modules[key]; exists {
		panic(fmt.Sprintf("task module %s already registered", key))
	}
	t.modules[key] = m
}

// Lookup returns the module for key.
func (t *Table) Lookup(key string) (Module, bool) {
	m, ok := t.modules[key]
	return m, ok
}

// Keys returns the registered group keys, sorted.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.modules))
	for k := range t.modules {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Requirement declares the minimum number of positional arguments a task
// needs. When UnlessOption is set and present, the requirement is waived.
type Requirement struct {
	MinArgs      int
	UnlessOption string
}

// satisfied reports whether args and opts meet the requirement.
func (r Requirement) satisfied(args []string, opts Options) bool {
	if r.UnlessOption != "" && opts.Bool(r.UnlessOption) {
		return true
	}
	return len(args) >= r.MinArgs
}
