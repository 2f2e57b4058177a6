package domain

import (
	"context"
	"io"
)

// LoaderPort is the public port exposed by the module
type LoaderPort interface {
	Load(ctx context.Context, r io.Reader, opt LoadOptions) (Report, error)
}

// StorageRepo is the transactional write surface for records and surveys
type StorageRepo interface {
	// Lock serializes loads of the same dataset for the rest of the transaction
	Lock(ctx context.Context, dataset string) error

	// InsertRecords writes rows and returns how many were inserted; ids already present are skipped
	InsertRecords(ctx context.Context, rs []Record) (int, error)

	// UpsertSurvey creates or replaces a survey definition
	UpsertSurvey(ctx context.Context, s Survey) error
}

// Mirror copies committed records into the columnar backend
type Mirror interface {
	Insert(ctx context.Context, rs []Record) error
}
