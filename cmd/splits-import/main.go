package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/config"
	"github.com/meltforce/splits/internal/ingest"
	"github.com/meltforce/splits/internal/ingest/splitcsv"
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/storage"
	"github.com/meltforce/splits/internal/training"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	filePath := flag.String("file", "", "path to split file, .csv or .csv.gz (required)")
	trainingFlag := flag.String("training", "", "existing training UUID to append to")
	name := flag.String("name", "", "name of the new training (defaults to the file name)")
	date := flag.String("date", "", "date of the new training, YYYY-MM-DD (defaults to today)")
	dryRun := flag.Bool("dry-run", false, "parse and report without writing to the database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *filePath == "" {
		fmt.Fprintf(os.Stderr, "Usage: splits-import -config config.yaml -file splits.csv [-training UUID | -name NAME -date YYYY-MM-DD] [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *dryRun {
		if err := dryRunReport(*filePath, log); err != nil {
			log.Error("dry run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, closeDB, err := storage.Open(ctx, cfg.Database, "migrations")
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	svc := training.NewService(db, log)
	provider := splitcsv.NewProvider(svc, log)

	f, err := splitcsv.Open(*filePath)
	if err != nil {
		log.Error("failed to open split file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	start := time.Now()
	var id uuid.UUID
	var result *ingest.Result
	if *trainingFlag != "" {
		id, err = existingTraining(ctx, svc, *trainingFlag)
		if err != nil {
			log.Error("failed to resolve training", "error", err)
			os.Exit(1)
		}
		result, err = provider.Ingest(ctx, f, id)
	} else {
		var t models.Training
		t, err = newTraining(*name, *date, *filePath)
		if err != nil {
			log.Error("invalid training flags", "error", err)
			os.Exit(1)
		}
		id, result, err = provider.IngestNew(ctx, f, t)
	}
	if id != uuid.Nil {
		logImport(ctx, db, id, result, err, time.Since(start), log)
	}
	if err != nil {
		log.Error("import failed", "error", err)
		os.Exit(1)
	}

	printResult(log, result)
	log.Info("import complete", "training", id)
}

// existingTraining parses idStr and checks the training exists.
func existingTraining(ctx context.Context, svc *training.Service, idStr string) (uuid.UUID, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parsing training ID: %w", err)
	}
	if _, err := svc.Get(ctx, id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// newTraining describes the training to create. The name defaults to the
// file name and the date to today.
func newTraining(name, date, path string) (models.Training, error) {
	if name == "" {
		name = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(path), ".gz"), ".csv")
	}
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if date != "" {
		var err error
		day, err = time.Parse("2006-01-02", date)
		if err != nil {
			return models.Training{}, fmt.Errorf("parsing date: %w", err)
		}
	}
	return models.Training{Name: name, Date: day}, nil
}

func dryRunReport(path string, log *slog.Logger) error {
	f, err := splitcsv.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := splitcsv.Parse(f)
	if err != nil {
		return err
	}
	log.Info("DRY RUN: parsed split file", "path", path, "segments", len(rows))
	return nil
}

func logImport(ctx context.Context, db storage.ImportLogStore, id uuid.UUID, result *ingest.Result, importErr error, took time.Duration, log *slog.Logger) {
	entry := storage.ImportLog{
		TrainingID: id,
		Source:     "cli",
		Status:     "success",
	}
	if result != nil {
		entry.SegmentsReceived = result.SegmentsReceived
		entry.SegmentsAdded = result.SegmentsAdded
		entry.SegmentsInvalid = result.SegmentsInvalid
	}
	ms := int(took.Milliseconds())
	entry.DurationMs = &ms
	if importErr != nil {
		entry.Status = "error"
		msg := importErr.Error()
		entry.ErrorMessage = &msg
	}
	if _, err := db.InsertImportLog(ctx, entry); err != nil {
		log.Warn("failed to log import", "error", err)
	}
}

func printResult(log *slog.Logger, result *ingest.Result) {
	log.Info("import result",
		"received", result.SegmentsReceived,
		"added", result.SegmentsAdded,
		"valid", result.SegmentsValid,
		"invalid", result.SegmentsInvalid,
	)
	if len(result.InvalidLines) > 0 {
		log.Info("inconsistent segments", "lines", result.InvalidLines)
	}
	for _, w := range result.Warnings {
		log.Warn(w)
	}
	if result.Message != "" {
		log.Info(result.Message)
	}
}
