// Package module defines the minimal contract for a modkit module and a port registry
package module

import (
	phttp "epimetrics/internal/platform/net/http"
)

// Module defines the minimal contract used by modkit
// keep this sibling to avoid import knots when a module also exports its own ports type
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}

// PortsOf asserts a module's Ports() to T
func PortsOf[T any](m Module) (T, bool) {
	v, ok := m.Ports().(T)
	return v, ok
}
