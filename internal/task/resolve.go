package task

import "strings"

// Resolved is the outcome of resolution. Set is the owning group key, or
// empty when nothing matched; Name is then the longest candidate tried.
type Resolved struct {
	Name string
	Set  string
}

// Found reports whether resolution matched a task.
func (r Resolved) Found() bool {
	return r.Set != ""
}

// Resolve maps positional command words to a task. It grows a candidate by
// one word per step and returns the first registry match, always reporting
// the descriptor's canonical name even when an alias matched.
func (r *Registry) Resolve(args []string) Resolved {
	res, _ := r.ResolveN(args)
	return res
}

// ResolveN is Resolve that also reports how many args the match consumed.
// The remaining args are the task's own positional arguments.
func (r *Registry) ResolveN(args []string) (Resolved, int) {
	name := ""
	for i, arg := range args {
		name = strings.TrimSpace(name + " " + arg)
		if hit, ok := r.index[name]; ok {
			return hit, i + 1
		}
	}
	return Resolved{Name: name}, len(args)
}
