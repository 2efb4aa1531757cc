package domain

import (
	"context"
	"io"
)

// BlobWriter uploads data to object storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
	PutMultipart(ctx context.Context, path string, data io.Reader, partSize int64) error
}

// RunArchiver uploads run artifacts to cold storage. Both methods return the
// object path written.
type RunArchiver interface {
	ArchiveReport(ctx context.Context, report RunReport) (string, error)
	ArchiveSnapshot(ctx context.Context, report RunReport, name string, csv []byte) (string, error)
}
