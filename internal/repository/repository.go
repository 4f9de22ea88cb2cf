package repository

import (
	"fmt"

	"github.com/yourusername/gridiron-metrics/internal/adapter"
	"github.com/yourusername/gridiron-metrics/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Dataset DatasetRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB, builder *adapter.Builder) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if builder == nil {
		return nil, fmt.Errorf("record builder is required")
	}

	return &Repositories{
		Dataset: NewPostgresDatasetRepository(db, builder),
	}, nil
}
