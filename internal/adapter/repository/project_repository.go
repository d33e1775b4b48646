package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/johnquangdev/meeting-intel/errors"
	"github.com/johnquangdev/meeting-intel/internal/domain/entities"
	"github.com/johnquangdev/meeting-intel/internal/domain/repositories"
)

// ProjectRepository handles project catalog operations
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *gorm.DB) repositories.ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns all active projects
func (r *ProjectRepository) List(ctx context.Context) ([]*entities.Project, error) {
	var projects []*entities.Project
	err := r.db.WithContext(ctx).
		Where("status = ?", "active").
		Order("name ASC").
		Find(&projects).Error
	if err != nil {
		return nil, apperrors.ErrDBQueryFailed("list_projects", err)
	}
	return projects, nil
}

// FindByID retrieves a project by ID
func (r *ProjectRepository) FindByID(ctx context.Context, id int64) (*entities.Project, error) {
	var project entities.Project
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}
