package s3blob

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/calebwren/propbot/internal/domain"
)

type fakeWriter struct {
	puts       map[string][]byte
	multiparts map[string][]byte
	err        error
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		puts:       make(map[string][]byte),
		multiparts: make(map[string][]byte),
	}
}

func (w *fakeWriter) Put(_ context.Context, path string, data io.Reader, _ string) error {
	if w.err != nil {
		return w.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	w.puts[path] = b
	return nil
}

func (w *fakeWriter) PutMultipart(_ context.Context, path string, data io.Reader, _ int64) error {
	if w.err != nil {
		return w.err
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	w.multiparts[path] = b
	return nil
}

func testReport() domain.RunReport {
	return domain.RunReport{
		RunID:     "0b7e2bb8-9f1d-4f46-a6f9-2f4f9f4e2a01",
		Mode:      "trade",
		StartedAt: time.Date(2025, 11, 28, 19, 30, 0, 0, time.UTC),
		Contracts: 120,
	}
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestArchiveReport(t *testing.T) {
	w := newFakeWriter()
	a := NewArchiver(w, discard())

	path, err := a.ArchiveReport(context.Background(), testReport())
	if err != nil {
		t.Fatalf("ArchiveReport: %v", err)
	}
	want := "runs/2025-11-28/0b7e2bb8-9f1d-4f46-a6f9-2f4f9f4e2a01/report.json"
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	var got domain.RunReport
	if err := json.Unmarshal(w.puts[path], &got); err != nil {
		t.Fatalf("uploaded report is not JSON: %v", err)
	}
	if got.RunID != "0b7e2bb8-9f1d-4f46-a6f9-2f4f9f4e2a01" || got.Mode != "trade" || got.Contracts != 120 {
		t.Errorf("round trip = %+v", got)
	}
}

func TestArchiveSnapshot(t *testing.T) {
	w := newFakeWriter()
	a := NewArchiver(w, discard())

	csv := []byte("ticker,title\nX,Y\n")
	path, err := a.ArchiveSnapshot(context.Background(), testReport(), "nba_player_props.csv", csv)
	if err != nil {
		t.Fatalf("ArchiveSnapshot: %v", err)
	}
	want := "runs/2025-11-28/0b7e2bb8-9f1d-4f46-a6f9-2f4f9f4e2a01/nba_player_props.csv"
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if string(w.multiparts[path]) != string(csv) {
		t.Errorf("uploaded bytes = %q", w.multiparts[path])
	}
}

func TestArchiveReportUploadFailure(t *testing.T) {
	w := newFakeWriter()
	w.err = errors.New("bucket gone")
	a := NewArchiver(w, discard())

	if _, err := a.ArchiveReport(context.Background(), testReport()); err == nil {
		t.Fatal("err = nil, want upload failure")
	}
}
