package module

import (
	"sort"
	"sync"
)

// registry of mounted modules and their port sets, filled by api.Mount
var (
	mu    sync.RWMutex
	ports = map[string]any{}
)

// Register records the port set of a mounted module; a second call for name replaces the first
func Register(name string, p any) {
	mu.Lock()
	defer mu.Unlock()
	ports[name] = p
}

// PortsAs resolves the port set registered under name as T
func PortsAs[T any](name string) (T, bool) {
	mu.RLock()
	v, ok := ports[name]
	mu.RUnlock()
	out, ok2 := v.(T)
	return out, ok && ok2
}

// Names lists the mounted modules in name order
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(ports))
	for n := range ports {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Reset forgets every module; tests only
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ports = map[string]any{}
}
