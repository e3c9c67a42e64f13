package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/models"
)

type ReviewFilter struct {
	BusinessID uint
	Rating     *int
}

func selectUserName(db *gorm.DB) *gorm.DB     { return db.Select("id", "name") }
func selectBusinessName(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }

func (r *GormRepo) CreateReview(ctx context.Context, rev *models.Review) (*models.Review, error) {
	if err := r.DB.WithContext(ctx).Omit("Business", "User").Create(rev).Error; err != nil {
		return nil, err
	}
	return r.getReviewWithUser(ctx, rev.ID)
}

func (r *GormRepo) getReviewWithUser(ctx context.Context, id uint) (*models.Review, error) {
	var rev models.Review
	if err := r.DB.WithContext(ctx).
		Preload("User", selectUserName).
		Where("id = ?", id).
		First(&rev).Error; err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *GormRepo) ListReviews(ctx context.Context, f ReviewFilter, s Sort) ([]models.Review, error) {
	q := r.DB.WithContext(ctx).Model(&models.Review{}).Where("business_id = ?", f.BusinessID)
	if f.Rating != nil {
		q = q.Where("rating = ?", *f.Rating)
	}
	q = applySort(q, s, "created_at")

	var items []models.Review
	if err := q.
		Preload("User", selectUserName).
		Preload("Business", selectBusinessName).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListAllReviews(ctx context.Context) ([]models.Review, error) {
	var items []models.Review
	if err := r.DB.WithContext(ctx).
		Preload("User", selectUserName).
		Preload("Business", selectBusinessName).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ReviewOwner returns the author id, or gorm.ErrRecordNotFound.
func (r *GormRepo) ReviewOwner(ctx context.Context, id uint) (uint, error) {
	var rev models.Review
	if err := r.DB.WithContext(ctx).Select("id", "user_id").Where("id = ?", id).First(&rev).Error; err != nil {
		return 0, err
	}
	return rev.UserID, nil
}

func (r *GormRepo) GetReview(ctx context.Context, id uint) (*models.Review, error) {
	return r.getReviewWithUser(ctx, id)
}

func (r *GormRepo) UpdateReview(ctx context.Context, id uint, rating int, comment string) (*models.Review, error) {
	res := r.DB.WithContext(ctx).Model(&models.Review{}).Where("id = ?", id).Updates(map[string]any{
		"rating":  rating,
		"comment": comment,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.getReviewWithUser(ctx, id)
}

func (r *GormRepo) DeleteReview(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
