package repo

import "epimetrics/internal/modkit/repokit"

// NewCH returns the clickhouse aggregator; the records table mirrors the postgres one
func NewCH(c repokit.Columnar) Repo {
	if c == nil {
		panic("series.NewCH requires a non nil clickhouse client")
	}
	return &queries{q: c, dialect: ClickHouse}
}
