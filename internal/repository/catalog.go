package repository

import (
	"context"

	"github.com/eslsoft/leitbox/internal/entity"
)

// CatalogRepository exposes the vocabulary catalog. The engine never writes
// to it; list content is managed by the surrounding system.
type CatalogRepository interface {
	// ListItems returns all items of a list in catalog order.
	// Returns entity.ErrListNotFound when the list does not exist.
	ListItems(ctx context.Context, listID int64) ([]entity.VocabItem, error)
}

// AssignmentRepository exposes teacher-configured pacing per class and list.
type AssignmentRepository interface {
	// Get returns the assignment for a class and list, or (nil, nil) when
	// none exists; callers fall back to entity.DefaultAssignment.
	Get(ctx context.Context, classID, listID int64) (*entity.Assignment, error)
}
