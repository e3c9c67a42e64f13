package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/models"
)

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) FindCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	var cat models.Category
	if err := r.DB.WithContext(ctx).Where("name = ?", name).First(&cat).Error; err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateCategoryIfNotExists reports whether a row was inserted.
func (r *GormRepo) CreateCategoryIfNotExists(ctx context.Context, c *models.Category) (bool, error) {
	tx := r.DB.WithContext(ctx).Where("name = ?", c.Name).FirstOrCreate(c)
	if errors.Is(tx.Error, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// EnsureCategories creates the missing names in one transaction and returns
// how many were inserted. Existing rows are left untouched.
func (r *GormRepo) EnsureCategories(ctx context.Context, names []string) (int, error) {
	created := 0
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			cat := models.Category{Name: name}
			res := tx.Where("name = ?", name).FirstOrCreate(&cat)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
