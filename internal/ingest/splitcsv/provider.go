package splitcsv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"
	"github.com/meltforce/splits/internal/ingest"
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/pace"
	"github.com/meltforce/splits/internal/training"
)

// ErrNoSegments is returned by IngestNew when the input holds no rows.
var ErrNoSegments = errors.New("no segments found")

// Provider imports split files into a training.
type Provider struct {
	svc *training.Service
	log *slog.Logger
}

// NewProvider creates a new split import provider.
func NewProvider(svc *training.Service, log *slog.Logger) *Provider {
	return &Provider{svc: svc, log: log}
}

// Ingest parses r and appends every row to the training in a single write.
func (p *Provider) Ingest(ctx context.Context, r io.Reader, trainingID uuid.UUID) (*ingest.Result, error) {
	rows, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing splits: %w", err)
	}
	return p.ingestRows(ctx, rows, trainingID)
}

// IngestNew parses r and, only if it holds segments, creates t and appends them.
// When the append fails the new training is deleted again.
func (p *Provider) IngestNew(ctx context.Context, r io.Reader, t models.Training) (uuid.UUID, *ingest.Result, error) {
	rows, err := Parse(r)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("parsing splits: %w", err)
	}
	if len(rows) == 0 {
		return uuid.Nil, nil, ErrNoSegments
	}

	d, err := p.svc.Create(ctx, t)
	if err != nil {
		return uuid.Nil, nil, fmt.Errorf("creating training: %w", err)
	}

	result, err := p.ingestRows(ctx, rows, d.ID)
	if err != nil {
		if derr := p.svc.Delete(ctx, d.ID); derr != nil {
			p.log.Error("failed to remove training after import error", "training", d.ID, "error", derr)
		}
		return uuid.Nil, nil, err
	}
	return d.ID, result, nil
}

func (p *Provider) ingestRows(ctx context.Context, rows []Row, trainingID uuid.UUID) (*ingest.Result, error) {
	result := &ingest.Result{SegmentsReceived: len(rows)}
	if len(rows) == 0 {
		result.Message = "no segments found"
		return result, nil
	}

	segs := make([]models.Segment, len(rows))
	for i, row := range rows {
		segs[i] = row.Segment
	}

	added, err := p.svc.AppendSegments(ctx, trainingID, segs)
	if err != nil {
		return nil, fmt.Errorf("storing segments: %w", err)
	}

	result.SegmentsAdded = len(added)
	for i, s := range added {
		if s.IsValid {
			result.SegmentsValid++
			continue
		}
		result.SegmentsInvalid++
		result.InvalidLines = append(result.InvalidLines, rows[i].Line)
		if pace.IsNamed(s.Pace) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("line %d: unknown named pace %s", rows[i].Line, s.Pace))
		}
	}

	p.log.Info("splits imported",
		"training", trainingID,
		"received", result.SegmentsReceived,
		"valid", result.SegmentsValid,
		"invalid", result.SegmentsInvalid,
	)
	return result, nil
}

// Open opens a split file for reading, transparently decompressing ".gz" files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("decompressing %s: %w", path, err)
	}
	return &gzipFile{Reader: zr, file: f}, nil
}

// gzipFile closes both the gzip stream and the underlying file.
type gzipFile struct {
	*gzip.Reader
	file *os.File
}

func (g *gzipFile) Close() error {
	zerr := g.Reader.Close()
	if err := g.file.Close(); err != nil {
		return err
	}
	return zerr
}
