package modkit

import (
	"net/http"

	"epimetrics/internal/modkit/httpkit"
	"epimetrics/internal/platform/strings"
)

// Built is a plain struct with the fields modules care about
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler

	Subrouter func(httpkit.Router) httpkit.Router
	Register  func(httpkit.Router)
}

// Build applies Option funcs and returns a plain struct; a set prefix is normalized to "/x"
func Build(opts ...Option) Built {
	var c buildCfg
	for _, o := range opts {
		o(&c)
	}
	if c.subrouter == nil {
		c.subrouter = func(r httpkit.Router) httpkit.Router { return r }
	}
	if c.register == nil {
		c.register = func(httpkit.Router) {}
	}
	prefix := c.prefix
	if prefix != "" {
		prefix = strings.MustPrefix(prefix)
	}
	return Built{
		Name:      c.name,
		Prefix:    prefix,
		Mw:        append([]func(http.Handler) http.Handler(nil), c.mw...),
		Subrouter: c.subrouter,
		Register:  c.register,
	}
}

// Mount attaches a built module to r: under Prefix when set, with its middlewares
func (b Built) Mount(r httpkit.Router) {
	mount := func(sub httpkit.Router) {
		if len(b.Mw) > 0 {
			sub.Use(b.Mw...)
		}
		b.Register(b.Subrouter(sub))
	}
	if b.Prefix == "" {
		r.Group(mount)
		return
	}
	r.Route(b.Prefix, mount)
}
