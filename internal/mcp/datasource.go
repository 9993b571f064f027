package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/meltforce/splits/internal/models"
	"github.com/meltforce/splits/internal/storage"
)

// DataSource abstracts the training store for MCP tools. *storage.DB,
// *storage.LiteDB (local) and HTTPClient (remote via REST API) satisfy it.
type DataSource interface {
	ListTrainings(ctx context.Context) ([]models.TrainingSummary, error)
	GetTraining(ctx context.Context, id uuid.UUID) (*models.Training, error)
}

var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*storage.LiteDB)(nil)
)
