package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
)

// ProjectRepository defines the interface for project catalog access
type ProjectRepository interface {
	// List returns all active projects
	List(ctx context.Context) ([]*entities.Project, error)

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id int64) (*entities.Project, error)
}
