package service

import (
	"context"
	"strings"

	"github.com/Skotchmaster/local_directory/internal/events"
	"github.com/Skotchmaster/local_directory/internal/logging"
	"github.com/Skotchmaster/local_directory/internal/models"
	"github.com/Skotchmaster/local_directory/internal/repo"
)

type CategoryService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.Repo.ListCategories(ctx)
}

// EnsureDefaults creates the missing seed categories and reports how many
// were added. Safe to call any number of times.
func (s *CategoryService) EnsureDefaults(ctx context.Context) (int, error) {
	n, err := s.Repo.EnsureCategories(ctx, models.DefaultCategories)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info("categories_ensured", "created", n, "total", len(models.DefaultCategories))
	return n, nil
}

func (s *CategoryService) Create(ctx context.Context, ident models.Identity, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("name is required")
	}
	cat := &models.Category{Name: name}
	created, err := s.Repo.CreateCategoryIfNotExists(ctx, cat)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, validationf("category already exists")
	}
	events.Emit(ctx, s.Events, events.Event{
		Type: events.CategoryCreated, ResourceID: cat.ID, ActorID: ident.UserID,
		Data: map[string]any{"name": cat.Name},
	})
	return cat, nil
}
