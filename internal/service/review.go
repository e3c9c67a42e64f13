package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/events"
	"github.com/Skotchmaster/local_directory/internal/logging"
	"github.com/Skotchmaster/local_directory/internal/models"
	"github.com/Skotchmaster/local_directory/internal/repo"
)

type ReviewService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type ReviewQuery struct {
	BusinessID uint
	Rating     *int
	SortBy     string
	Order      string
}

type ReviewPatch struct {
	Rating  *int
	Comment *string
}

var reviewSortColumns = map[string]string{
	"id":         "id",
	"rating":     "rating",
	"comment":    "comment",
	"businessId": "business_id",
	"userId":     "user_id",
	"createdAt":  "created_at",
	"updatedAt":  "updated_at",
}

func checkRating(r int) error {
	if r < 1 || r > 5 {
		return validationf("rating must be between 1 and 5")
	}
	return nil
}

func (s *ReviewService) Create(ctx context.Context, ident models.Identity, businessID uint, rating int, comment string) (*models.Review, error) {
	l := logging.FromContext(ctx).With("svc", "review.create", "business_id", businessID)

	if err := checkRating(rating); err != nil {
		return nil, err
	}
	rev, err := s.Repo.CreateReview(ctx, &models.Review{
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		BusinessID: businessID,
		UserID:     ident.UserID,
	})
	if err != nil {
		l.Error("create_review_failed", "status", 500, "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.Event{
		Type: events.ReviewCreated, ResourceID: rev.ID, ActorID: ident.UserID,
		Data: map[string]any{"businessId": businessID, "rating": rating},
	})
	return rev, nil
}

func (s *ReviewService) List(ctx context.Context, q ReviewQuery) ([]models.Review, error) {
	var sort repo.Sort
	switch strings.ToLower(q.Order) {
	case "", "desc":
		sort.Desc = true
	case "asc":
	default:
		return nil, validationf("order must be asc or desc")
	}
	if q.SortBy != "" {
		col, ok := reviewSortColumns[q.SortBy]
		if !ok {
			return nil, validationf("cannot sort by %q", q.SortBy)
		}
		sort.Column = col
	}
	return s.Repo.ListReviews(ctx, repo.ReviewFilter{BusinessID: q.BusinessID, Rating: q.Rating}, sort)
}

func (s *ReviewService) ListAll(ctx context.Context) ([]models.Review, error) {
	return s.Repo.ListAllReviews(ctx)
}

func (s *ReviewService) Update(ctx context.Context, ident models.Identity, id uint, p ReviewPatch) (*models.Review, error) {
	l := logging.FromContext(ctx).With("svc", "review.update", "review_id", id)

	if err := Authorize(ctx, ident, id, s.Repo.ReviewOwner); err != nil {
		l.Warn("update_review_failed", "reason", "authorize", "error", err)
		return nil, err
	}
	cur, err := s.Repo.GetReview(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rating, comment := cur.Rating, cur.Comment
	if p.Rating != nil {
		if err := checkRating(*p.Rating); err != nil {
			return nil, err
		}
		rating = *p.Rating
	}
	if p.Comment != nil {
		comment = strings.TrimSpace(*p.Comment)
	}

	rev, err := s.Repo.UpdateReview(ctx, id, rating, comment)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		l.Error("update_review_failed", "status", 500, "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.Event{
		Type: events.ReviewUpdated, ResourceID: id, ActorID: ident.UserID,
		Data: map[string]any{"rating": rating},
	})
	return rev, nil
}

func (s *ReviewService) Delete(ctx context.Context, ident models.Identity, id uint) error {
	l := logging.FromContext(ctx).With("svc", "review.delete", "review_id", id)

	if err := Authorize(ctx, ident, id, s.Repo.ReviewOwner); err != nil {
		l.Warn("delete_review_failed", "reason", "authorize", "error", err)
		return err
	}
	if err := s.Repo.DeleteReview(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		l.Error("delete_review_failed", "status", 500, "error", err)
		return err
	}

	events.Emit(ctx, s.Events, events.Event{
		Type: events.ReviewDeleted, ResourceID: id, ActorID: ident.UserID,
	})
	return nil
}
