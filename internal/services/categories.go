package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/silomba/backend/internal/apperror"
	"github.com/silomba/backend/internal/models"
	"github.com/silomba/backend/pkg/logger"
	"gorm.io/gorm"
)

type CategoryService struct {
	DB      *gorm.DB
	Cleanup *CleanupService
}

func NewCategoryService(db *gorm.DB, cleanup *CleanupService) *CategoryService {
	return &CategoryService{DB: db, Cleanup: cleanup}
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.DB.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, internalError("failed listing categories", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("", "name is required")
	}

	db := s.DB.WithContext(ctx)
	if err := s.ensureNameFree(db, name, uuid.Nil); err != nil {
		return nil, err
	}

	category := models.Category{Name: name}
	if err := db.Create(&category).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperror.ErrDuplicateCategory
		}
		return nil, internalError("failed creating category", err)
	}

	logger.Info("category_created", map[string]interface{}{
		"category_id": category.ID.String(),
		"name":        category.Name,
	})
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("", "name is required")
	}

	db := s.DB.WithContext(ctx)

	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("category not found")
		}
		return nil, internalError("failed fetching category", err)
	}

	if category.Name == name {
		return &category, nil
	}
	if err := s.ensureNameFree(db, name, id); err != nil {
		return nil, err
	}

	if err := db.Model(&category).Update("name", name).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, apperror.ErrDuplicateCategory
		}
		return nil, internalError("failed updating category", err)
	}
	category.Name = name

	logger.Info("category_updated", map[string]interface{}{
		"category_id": category.ID.String(),
		"name":        name,
	})
	return &category, nil
}

// Delete removes a category together with every competition filed under it.
// Poster files of the removed competitions are queued for cleanup once the
// transaction has committed.
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	var posters []string

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Competition{}).
			Where("category_id = ?", id).
			Pluck("poster_url", &posters).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.Competition{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("category not found")
		}
		return nil, internalError("failed deleting category", err)
	}

	for _, poster := range posters {
		s.Cleanup.Enqueue(poster)
	}

	logger.Info("category_deleted", map[string]interface{}{
		"category_id":          id.String(),
		"name":                 category.Name,
		"competitions_removed": len(posters),
	})
	return &category, nil
}

// ensureNameFree matches names exactly; "UI/UX" and "ui/ux" are distinct.
func (s *CategoryService) ensureNameFree(db *gorm.DB, name string, exclude uuid.UUID) error {
	query := db.Model(&models.Category{}).Where("name = ?", name)
	if exclude != uuid.Nil {
		query = query.Where("id <> ?", exclude)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return internalError("failed checking category name", err)
	}
	if count > 0 {
		return apperror.ErrDuplicateCategory
	}
	return nil
}
