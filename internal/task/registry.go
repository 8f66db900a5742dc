package task

import (
	"fmt"
	"sort"
	"strings"
)

// Group is the set of tasks implemented by one task module, in document order.
type Group struct {
	Key   string
	tasks []*Descriptor
	names map[string]*Descriptor
}

// NewGroup builds a group from descriptors. Canonical names must be unique
// within the group and normalized (single spaces, no surrounding blanks).
func NewGroup(key string, descriptors ...Descriptor) (*Group, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("task group key must not be empty")
	}
	g := &Group{
		Key:   key,
		names: make(map[string]*Descriptor, len(descriptors)),
	}
	for i := range descriptors {
		if err := g.add(descriptors[i]); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Group) add(d Descriptor) error {
	if !normalized(d.Name) {
		return fmt.Errorf("task name %q must be non-empty words separated by single spaces", d.Name)
	}
	if _, dup := g.names[d.Name]; dup {
		return fmt.Errorf("task %q defined twice", d.Name)
	}
	for _, a := range d.Aliases {
		if !normalized(a) {
			return fmt.Errorf("task %q: alias %q must be non-empty words separated by single spaces", d.Name, a)
		}
	}
	desc := d
	g.tasks = append(g.tasks, &desc)
	g.names[d.Name] = &desc
	return nil
}

// Tasks returns the group's descriptors in document order.
func (g *Group) Tasks() []*Descriptor {
	return g.tasks
}

// Lookup returns the descriptor with the given canonical name.
func (g *Group) Lookup(name string) (*Descriptor, bool) {
	d, ok := g.names[name]
	return d, ok
}

// Len returns the number of tasks in the group.
func (g *Group) Len() int {
	return len(g.tasks)
}

// Registry is an ordered list of task groups plus a first-match index over
// every canonical name and alias.
type Registry struct {
	groups []*Group
	byKey  map[string]*Group
	index  map[string]Resolved
}

// NewRegistry builds a registry from groups in the given order. Group keys
// must be unique; task names may repeat across groups (first group wins).
func NewRegistry(groups ...*Group) (*Registry, error) {
	r := &Registry{
		byKey: make(map[string]*Group, len(groups)),
		index: make(map[string]Resolved),
	}
	for _, g := range groups {
		if _, dup := r.byKey[g.Key]; dup {
			return nil, fmt.Errorf("task group %q registered twice", g.Key)
		}
		r.groups = append(r.groups, g)
		r.byKey[g.Key] = g

		for _, d := range g.tasks {
			hit := Resolved{Name: d.Name, Set: g.Key}
			r.remember(d.Name, hit)
			for _, a := range d.Aliases {
				r.remember(a, hit)
			}
		}
	}
	return r, nil
}

// remember keeps only the first descriptor seen for a key, which is the
// descriptor a linear scan in registry order would return.
func (r *Registry) remember(key string, hit Resolved) {
	if _, seen := r.index[key]; !seen {
		r.index[key] = hit
	}
}

// Groups returns all groups in registry order.
func (r *Registry) Groups() []*Group {
	return r.groups
}

// Group returns the group registered under key.
func (r *Registry) Group(key string) (*Group, bool) {
	g, ok := r.byKey[key]
	return g, ok
}

// Descriptor returns the descriptor for a resolved task.
func (r *Registry) Descriptor(res Resolved) (*Descriptor, bool) {
	g, ok := r.byKey[res.Set]
	if !ok {
		return nil, false
	}
	return g.Lookup(res.Name)
}

// Completions returns canonical names that extend prefix by at least one
// more word, in registry order without duplicates.
func (r *Registry) Completions(prefix string) []string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, g := range r.groups {
		for _, d := range g.tasks {
			if strings.HasPrefix(d.Name, prefix+" ") && !seen[d.Name] {
				seen[d.Name] = true
				out = append(out, d.Name)
			}
		}
	}
	return out
}

// Entry pairs a descriptor with the group that owns it.
type Entry struct {
	Set        string
	Descriptor *Descriptor
}

// Sorted returns every descriptor ordered by Order ascending. Ties keep
// registry order. Hidden tasks are skipped unless all is set.
func (r *Registry) Sorted(all bool) []Entry {
	var entries []Entry
	for _, g := range r.groups {
		for _, d := range g.tasks {
			if d.ShowInHelp || all {
				entries = append(entries, Entry{Set: g.Key, Descriptor: d})
			}
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Descriptor.Order < entries[j].Descriptor.Order
	})
	return entries
}

func normalized(name string) bool {
	return name != "" && strings.Join(strings.Fields(name), " ") == name
}
