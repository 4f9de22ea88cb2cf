package repository

import (
	"context"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/models"
)

// DatasetRepository defines read access to one season of inputs
type DatasetRepository interface {
	LoadSeason(ctx context.Context, season int) (*models.Dataset, error)
	LoadRaw(ctx context.Context, season int) (adapter.RawDataset, error)
	Seasons(ctx context.Context) ([]int, error)
}
