package timeseries

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// PlaceholderSource names the synthetic source used when no query reported one
const PlaceholderSource = "unspecified"

// MergeMetadata folds the metadata of independent queries: one source per name at its latest
// date, sorted by name, with LastUpdate the latest date overall. With no sources anywhere the
// result is a single placeholder dated now. Input order does not matter.
func MergeMetadata(now time.Time, parts ...Metadata) Metadata {
	latest := map[string]time.Time{}
	for _, p := range parts {
		for _, s := range p.Sources {
			if cur, ok := latest[s.Name]; !ok || s.Date.After(cur) {
				latest[s.Name] = s.Date
			}
		}
	}
	if len(latest) == 0 {
		return Metadata{Sources: []Source{{Name: PlaceholderSource, Date: now}}, LastUpdate: now}
	}

	names := lo.Keys(latest)
	sort.Strings(names)
	sources := lo.Map(names, func(n string, _ int) Source { return Source{Name: n, Date: latest[n]} })
	newest := lo.MaxBy(sources, func(a, b Source) bool { return a.Date.After(b.Date) })
	return Metadata{Sources: sources, LastUpdate: newest.Date}
}
