package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/calebwren/propbot/internal/domain"
)

// Archiver implements domain.RunArchiver on a blob writer. Every artifact of
// one run lands under runs/<yyyy-mm-dd>/<run_id>/ so a day's runs group
// together and a run's report sits next to the snapshots it scanned.
type Archiver struct {
	writer domain.BlobWriter
	logger *slog.Logger
}

// NewArchiver creates an Archiver uploading through writer.
func NewArchiver(writer domain.BlobWriter, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer: writer,
		logger: logger.With(slog.String("component", "archiver")),
	}
}

func runPrefix(report domain.RunReport) string {
	return fmt.Sprintf("runs/%s/%s", report.StartedAt.UTC().Format("2006-01-02"), report.RunID)
}

// ArchiveReport uploads the run report as pretty-printed JSON.
func (a *Archiver) ArchiveReport(ctx context.Context, report domain.RunReport) (string, error) {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("s3blob: marshal report: %w", err)
	}
	path := runPrefix(report) + "/report.json"
	if err := a.writer.Put(ctx, path, bytes.NewReader(b), "application/json"); err != nil {
		return "", err
	}
	a.logger.Info("report archived",
		slog.String("path", path),
		slog.Int("bytes", len(b)),
	)
	return path, nil
}

// ArchiveSnapshot uploads one snapshot CSV next to the run's report, through
// the multipart manager since snapshots are the large artifacts.
func (a *Archiver) ArchiveSnapshot(ctx context.Context, report domain.RunReport, name string, csv []byte) (string, error) {
	path := runPrefix(report) + "/" + name
	if err := a.writer.PutMultipart(ctx, path, bytes.NewReader(csv), int64(len(csv))); err != nil {
		return "", err
	}
	a.logger.Info("snapshot archived",
		slog.String("path", path),
		slog.Int("bytes", len(csv)),
	)
	return path, nil
}

// Compile-time interface check.
var _ domain.RunArchiver = (*Archiver)(nil)
