package repo

import "epimetrics/internal/modkit/repokit"

// PG is a binder that can bind the repo to a Queryer or TxRunner
type PG struct{}

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q, dialect: Postgres} }
