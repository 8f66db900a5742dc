package modules

import (
	"context"

	"github.com/quocvuong92/monaca-cli/internal/config"
	"github.com/quocvuong92/monaca-cli/internal/dispatch"
)

// Proxy stores the proxy used for Monaca Cloud.
type Proxy struct {
	env *Env
}

func (m *Proxy) Run(_ context.Context, name string, inv dispatch.Invocation) (*dispatch.Result, error) {
	switch name {
	case "proxy set":
		path, err := config.SaveProxy(inv.Args[0])
		if err != nil {
			return nil, err
		}
		m.env.Console.Success("Proxy server set to " + inv.Args[0] + ".")
		m.env.Console.Println("Saved in " + path)
		return nil, nil
	case "proxy rm":
		if _, err := config.RemoveProxy(); err != nil {
			return nil, err
		}
		m.env.Console.Success("Proxy server removed.")
		return nil, nil
	}
	return nil, errUnknownTask(name)
}
