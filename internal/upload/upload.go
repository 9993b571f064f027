package upload

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/meltforce/splits/internal/ingest/splitcsv"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	SegmentsAdded   int
	SegmentsInvalid int
}

// Uploader walks a directory of split files and imports each one into a new
// training on the Splits server.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
	now    func() time.Time
}

// New creates a new Uploader.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
		now:    time.Now,
	}
}

// Run uploads every split file not yet recorded in the state database.
// A failing file is counted and logged; the walk continues.
func (u *Uploader) Run() (*Stats, error) {
	err := filepath.WalkDir(u.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSplitFile(path) {
			return nil
		}
		u.stats.FilesTotal++

		if err := u.processFile(path); err != nil {
			u.stats.FilesErrored++
			u.log.Error("upload failed", "file", path, "error", err)
		}
		return nil
	})
	if err != nil {
		return &u.stats, fmt.Errorf("walking %s: %w", u.dir, err)
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(path string) error {
	rel, err := filepath.Rel(u.dir, path)
	if err != nil {
		rel = path
	}

	hash, err := HashFile(path)
	if err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	done, err := u.state.IsUploaded(rel, hash)
	if err != nil {
		return fmt.Errorf("checking state: %w", err)
	}
	if done {
		u.stats.FilesSkipped++
		return nil
	}

	csv, err := readSplitFile(path)
	if err != nil {
		return err
	}
	rows, err := splitcsv.Parse(bytes.NewReader(csv))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", rel, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("parsing %s: %w", rel, splitcsv.ErrNoSegments)
	}

	name, date := trainingFromFileName(path, u.now())
	if u.dryRun {
		u.log.Info("DRY RUN: would upload", "file", rel, "segments", len(rows), "training", name, "date", date.Format("2006-01-02"), "bytes", len(csv))
		return nil
	}

	id, err := u.client.CreateTraining(name, date)
	if err != nil {
		return err
	}
	result, err := u.client.ImportSplits(id, csv)
	if err != nil {
		if derr := u.client.DeleteTraining(id); derr != nil {
			u.log.Error("failed to remove training after import error", "file", rel, "training", id, "error", derr)
		}
		return err
	}
	for _, w := range result.Warnings {
		u.log.Warn("import warning", "file", rel, "warning", w)
	}

	if err := u.state.MarkUploaded(rel, hash, id); err != nil {
		return fmt.Errorf("recording upload: %w", err)
	}

	u.stats.FilesUploaded++
	u.stats.SegmentsAdded += result.SegmentsAdded
	u.stats.SegmentsInvalid += result.SegmentsInvalid
	u.log.Info("uploaded", "file", rel, "training", id, "segments", result.SegmentsAdded)
	return nil
}

func isSplitFile(path string) bool {
	return strings.HasSuffix(path, ".csv") || strings.HasSuffix(path, ".csv.gz")
}

// readSplitFile returns the CSV content of path, decompressing ".gz" files.
func readSplitFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return data, nil
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	defer gz.Close()
	return io.ReadAll(gz)
}

// trainingFromFileName derives a training name and date from a file name like
// "2026-05-04_intervals.csv". Without a date prefix the date is today.
func trainingFromFileName(path string, now time.Time) (string, time.Time) {
	base := strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".gz"), ".csv")
	if len(base) >= len("2006-01-02") {
		if d, err := time.Parse("2006-01-02", base[:10]); err == nil {
			name := strings.TrimLeft(base[10:], "_- ")
			if name == "" {
				name = base
			}
			return name, d
		}
	}
	return base, now.UTC().Truncate(24 * time.Hour)
}

// StateDir returns the default state directory under the user's home.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".splits-upload"), nil
}

