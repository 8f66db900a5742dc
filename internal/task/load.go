package task

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed docs/*.yaml
var builtinDocs embed.FS

// LoadError reports a descriptor document that cannot be turned into a
// task group. It is fatal at startup.
type LoadError struct {
	Source string
	Task   string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Task != "" {
		return fmt.Sprintf("load task group %s: task %q: %v", e.Source, e.Task, e.Err)
	}
	return fmt.Sprintf("load task group %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Builtin loads the descriptor documents compiled into the binary.
func Builtin() (*Registry, error) {
	sub, err := fs.Sub(builtinDocs, "docs")
	if err != nil {
		return nil, &LoadError{Source: "docs", Err: err}
	}
	return LoadFS(sub)
}

// Load reads every descriptor document in dir.
func Load(dir string) (*Registry, error) {
	return LoadFS(os.DirFS(dir))
}

// LoadFS reads every .yaml, .yml or .json document at the root of fsys, in
// file name order. The group key is the file name up to its first dot.
func LoadFS(fsys fs.FS) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, &LoadError{Source: ".", Err: err}
	}

	var groups []*Group
	for _, e := range entries {
		if e.IsDir() || !isDescriptorDoc(e.Name()) {
			continue
		}
		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, &LoadError{Source: e.Name(), Err: err}
		}
		key, _, _ := strings.Cut(e.Name(), ".")
		g, err := ParseGroup(key, e.Name(), data)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	reg, err := NewRegistry(groups...)
	if err != nil {
		return nil, &LoadError{Source: ".", Err: err}
	}
	return reg, nil
}

// ParseGroup decodes one descriptor document. The document is a mapping of
// task name to descriptor; its key order becomes the group's task order.
func ParseGroup(key, source string, data []byte) (*Group, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("empty document")}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Source: source, Err: fmt.Errorf("line %d: expected a mapping of task names", root.Line)}
	}

	g, err := NewGroup(key)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		nameNode, body := root.Content[i], root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, &LoadError{Source: source, Task: nameNode.Value, Err: fmt.Errorf("line %d: descriptor must be a mapping", body.Line)}
		}
		var raw rawDescriptor
		if err := body.Decode(&raw); err != nil {
			return nil, &LoadError{Source: source, Task: nameNode.Value, Err: err}
		}
		if err := g.add(raw.descriptor(nameNode.Value)); err != nil {
			return nil, &LoadError{Source: source, Task: nameNode.Value, Err: err}
		}
	}
	return g, nil
}

func isDescriptorDoc(name string) bool {
	switch path.Ext(name) {
	case ".yaml", ".yml", ".json":
		return !strings.HasPrefix(name, ".")
	}
	return false
}
