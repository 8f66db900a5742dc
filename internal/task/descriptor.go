package task

// Descriptor is the metadata for one task. It drives both resolution
// (Name, Aliases) and help output (everything else).
type Descriptor struct {
	Name            string
	Aliases         []string
	Description     string
	LongDescription []string
	Usage           []string
	Examples        []string
	Order           int
	ShowInHelp      bool
}

// Matches reports whether candidate is the canonical name or one of the aliases.
func (d *Descriptor) Matches(candidate string) bool {
	if d.Name == candidate {
		return true
	}
	for _, a := range d.Aliases {
		if a == candidate {
			return true
		}
	}
	return false
}

// rawDescriptor is the on-disk shape. ShowInHelp is a pointer so that an
// absent key can default to true.
type rawDescriptor struct {
	Description     string   `yaml:"description"`
	LongDescription []string `yaml:"longDescription"`
	Usage           []string `yaml:"usage"`
	Examples        []string `yaml:"examples"`
	Aliases         []string `yaml:"aliases"`
	Order           int      `yaml:"order"`
	ShowInHelp      *bool    `yaml:"showInHelp"`
}

func (r rawDescriptor) descriptor(name string) Descriptor {
	show := true
	if r.ShowInHelp != nil {
		show = *r.ShowInHelp
	}
	return Descriptor{
		Name:            name,
		Aliases:         r.Aliases,
		Description:     r.Description,
		LongDescription: r.LongDescription,
		Usage:           r.Usage,
		Examples:        r.Examples,
		Order:           r.Order,
		ShowInHelp:      show,
	}
}
