package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/models"
)

type BusinessFilter struct {
	CategoryID *uint
	Location   string
}

func (r *GormRepo) CreateBusiness(ctx context.Context, b *models.Business) (*models.Business, error) {
	if err := r.DB.WithContext(ctx).Omit("Category", "Owner", "Reviews").Create(b).Error; err != nil {
		return nil, err
	}
	return r.getBusinessWithOwner(ctx, b.ID)
}

func (r *GormRepo) getBusinessWithOwner(ctx context.Context, id uint) (*models.Business, error) {
	var b models.Business
	if err := r.DB.WithContext(ctx).
		Preload("Category").
		Preload("Owner").
		Where("id = ?", id).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormRepo) ListBusinesses(ctx context.Context, f BusinessFilter, s Sort) ([]models.Business, error) {
	q := r.DB.WithContext(ctx).Model(&models.Business{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Location != "" {
		q = q.Where(`location LIKE ? ESCAPE '\'`, likePattern(f.Location))
	}
	q = applySort(q, s, "created_at")

	var items []models.Business
	if err := q.Preload("Category").Preload("Reviews").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetBusiness(ctx context.Context, id uint) (*models.Business, error) {
	var b models.Business
	if err := r.DB.WithContext(ctx).
		Preload("Category").
		Preload("Reviews").
		Where("id = ?", id).
		First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// BusinessOwner returns the owner id, or gorm.ErrRecordNotFound.
func (r *GormRepo) BusinessOwner(ctx context.Context, id uint) (uint, error) {
	var b models.Business
	if err := r.DB.WithContext(ctx).Select("id", "owner_id").Where("id = ?", id).First(&b).Error; err != nil {
		return 0, err
	}
	return b.OwnerID, nil
}

func (r *GormRepo) UpdateBusiness(ctx context.Context, b *models.Business) (*models.Business, error) {
	res := r.DB.WithContext(ctx).Model(&models.Business{}).Where("id = ?", b.ID).Updates(map[string]any{
		"name":        b.Name,
		"description": b.Description,
		"address":     b.Address,
		"location":    b.Location,
		"category_id": b.CategoryID,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.getBusinessWithOwner(ctx, b.ID)
}

// DeleteBusiness removes the business together with its reviews.
func (r *GormRepo) DeleteBusiness(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("business_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Business{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) ListBusinessesByOwner(ctx context.Context, ownerID uint) ([]models.Business, error) {
	var items []models.Business
	if err := r.DB.WithContext(ctx).
		Preload("Category").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetBusinessesByIDs keeps the order of ids and skips ids that no longer exist.
func (r *GormRepo) GetBusinessesByIDs(ctx context.Context, ids []uint) ([]models.Business, error) {
	if len(ids) == 0 {
		return []models.Business{}, nil
	}
	var found []models.Business
	if err := r.DB.WithContext(ctx).Preload("Category").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Business, len(found))
	for _, b := range found {
		byID[b.ID] = b
	}
	out := make([]models.Business, 0, len(found))
	for _, id := range ids {
		if b, ok := byID[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// SearchBusinesses matches q against name, description and location,
// case-insensitively.
func (r *GormRepo) SearchBusinesses(ctx context.Context, q string, offset, limit int) (int64, []models.Business, error) {
	p := likePattern(q)
	where := r.DB.WithContext(ctx).Model(&models.Business{}).Where(
		`LOWER(name) LIKE LOWER(?) ESCAPE '\' OR LOWER(description) LIKE LOWER(?) ESCAPE '\' OR LOWER(location) LIKE LOWER(?) ESCAPE '\'`,
		p, p, p,
	)

	var total int64
	if err := where.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Business, 0, limit)
	if err := where.Session(&gorm.Session{}).
		Preload("Category").
		Order("name ASC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}
