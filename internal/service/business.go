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
	"github.com/Skotchmaster/local_directory/internal/search"
	"github.com/Skotchmaster/local_directory/internal/util"
)

// Indexer keeps a full-text index of businesses.
type Indexer interface {
	Put(ctx context.Context, d search.Doc) error
	Remove(ctx context.Context, id uint) error
	Query(ctx context.Context, q string, from, size int) (int64, []uint, error)
}

type BusinessService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Index is optional. Without it search runs against the database.
	Index Indexer
}

type BusinessInput struct {
	Name        string
	Description string
	Address     string
	Location    string
	Category    string
}

// BusinessPatch leaves nil fields unchanged. Category is always resolved.
type BusinessPatch struct {
	Name        *string
	Description *string
	Address     *string
	Location    *string
	Category    string
}

type BusinessQuery struct {
	CategoryID *uint
	Location   string
	SortBy     string
	Order      string
}

type SearchResult struct {
	Total int64
	Page  int
	Size  int
	Items []models.Business
}

var businessSortColumns = map[string]string{
	"id":          "id",
	"name":        "name",
	"description": "description",
	"address":     "address",
	"location":    "location",
	"categoryId":  "category_id",
	"ownerId":     "owner_id",
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
}

func (s *BusinessService) resolveCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidCategory
	}
	cat, err := s.Repo.FindCategoryByName(ctx, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCategory
		}
		return nil, err
	}
	return cat, nil
}

func required(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", validationf("%s is required", field)
	}
	return v, nil
}

func (s *BusinessService) Create(ctx context.Context, ident models.Identity, in BusinessInput) (*models.Business, error) {
	l := logging.FromContext(ctx).With("svc", "business.create")

	name, err := required("name", in.Name)
	if err != nil {
		return nil, err
	}
	address, err := required("address", in.Address)
	if err != nil {
		return nil, err
	}
	location, err := required("location", in.Location)
	if err != nil {
		return nil, err
	}
	cat, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		l.Warn("create_business_failed", "reason", "category", "category", in.Category, "error", err)
		return nil, err
	}

	b, err := s.Repo.CreateBusiness(ctx, &models.Business{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Address:     address,
		Location:    location,
		CategoryID:  cat.ID,
		OwnerID:     ident.UserID,
	})
	if err != nil {
		l.Error("create_business_failed", "status", 500, "error", err)
		return nil, err
	}

	s.index(ctx, b)
	events.Emit(ctx, s.Events, events.Event{
		Type: events.BusinessCreated, ResourceID: b.ID, ActorID: ident.UserID,
		Data: map[string]any{"name": b.Name, "categoryId": b.CategoryID},
	})
	l.Info("create_business_success", "business_id", b.ID)
	return b, nil
}

func (s *BusinessService) List(ctx context.Context, q BusinessQuery) ([]models.Business, error) {
	sort := repo.Sort{Desc: q.Order == "desc"}
	if q.SortBy != "" {
		col, ok := businessSortColumns[q.SortBy]
		if !ok {
			return nil, validationf("cannot sort by %q", q.SortBy)
		}
		sort.Column = col
	}
	return s.Repo.ListBusinesses(ctx, repo.BusinessFilter{
		CategoryID: q.CategoryID,
		Location:   q.Location,
	}, sort)
}

func (s *BusinessService) Get(ctx context.Context, id uint) (*models.Business, error) {
	b, err := s.Repo.GetBusiness(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func patchField(dst *string, field string, v *string) error {
	if v == nil {
		return nil
	}
	if field == "description" {
		*dst = strings.TrimSpace(*v)
		return nil
	}
	val, err := required(field, *v)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func (s *BusinessService) Update(ctx context.Context, ident models.Identity, id uint, p BusinessPatch) (*models.Business, error) {
	l := logging.FromContext(ctx).With("svc", "business.update", "business_id", id)

	if err := Authorize(ctx, ident, id, s.Repo.BusinessOwner); err != nil {
		l.Warn("update_business_failed", "reason", "authorize", "error", err)
		return nil, err
	}
	cat, err := s.resolveCategory(ctx, p.Category)
	if err != nil {
		l.Warn("update_business_failed", "reason", "category", "category", p.Category, "error", err)
		return nil, err
	}

	cur, err := s.Repo.GetBusiness(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := patchField(&cur.Name, "name", p.Name); err != nil {
		return nil, err
	}
	if err := patchField(&cur.Description, "description", p.Description); err != nil {
		return nil, err
	}
	if err := patchField(&cur.Address, "address", p.Address); err != nil {
		return nil, err
	}
	if err := patchField(&cur.Location, "location", p.Location); err != nil {
		return nil, err
	}
	cur.CategoryID = cat.ID

	b, err := s.Repo.UpdateBusiness(ctx, cur)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		l.Error("update_business_failed", "status", 500, "error", err)
		return nil, err
	}

	s.index(ctx, b)
	events.Emit(ctx, s.Events, events.Event{
		Type: events.BusinessUpdated, ResourceID: b.ID, ActorID: ident.UserID,
		Data: map[string]any{"name": b.Name, "categoryId": b.CategoryID},
	})
	return b, nil
}

// Delete reports ErrForbidden both for a missing business and for one
// owned by someone else.
func (s *BusinessService) Delete(ctx context.Context, ident models.Identity, id uint) error {
	l := logging.FromContext(ctx).With("svc", "business.delete", "business_id", id)

	if err := Authorize(ctx, ident, id, s.Repo.BusinessOwner); err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrForbidden
		}
		l.Warn("delete_business_failed", "reason", "authorize", "error", err)
		return err
	}
	if err := s.Repo.DeleteBusiness(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrForbidden
		}
		l.Error("delete_business_failed", "status", 500, "error", err)
		return err
	}

	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			l.Warn("search_index_failed", "op", "remove", "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.Event{
		Type: events.BusinessDeleted, ResourceID: id, ActorID: ident.UserID,
	})
	return nil
}

func (s *BusinessService) ListMine(ctx context.Context, ident models.Identity) ([]models.Business, error) {
	return s.Repo.ListBusinessesByOwner(ctx, ident.UserID)
}

// Search uses the index when one is configured and falls back to the
// database when the index is missing or failing.
func (s *BusinessService) Search(ctx context.Context, q string, page, size int) (*SearchResult, error) {
	l := logging.FromContext(ctx).With("svc", "business.search")

	q = strings.TrimSpace(q)
	page = util.ClampPage(page)
	offset, limit := util.Calculate(page, size)
	res := &SearchResult{Page: page, Size: limit, Items: []models.Business{}}
	if q == "" {
		return res, nil
	}

	if s.Index != nil {
		total, ids, err := s.Index.Query(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.GetBusinessesByIDs(ctx, ids)
			if err != nil {
				return nil, err
			}
			res.Total, res.Items = total, items
			return res, nil
		}
		l.Warn("search_index_failed", "op", "query", "error", err)
	}

	total, items, err := s.Repo.SearchBusinesses(ctx, q, offset, limit)
	if err != nil {
		return nil, err
	}
	res.Total, res.Items = total, items
	return res, nil
}

func (s *BusinessService) index(ctx context.Context, b *models.Business) {
	if s.Index == nil {
		return
	}
	d := search.Doc{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		Location:    b.Location,
	}
	if b.Category != nil {
		d.Category = b.Category.Name
	}
	if err := s.Index.Put(ctx, d); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "op", "put", "business_id", b.ID, "error", err)
	}
}
