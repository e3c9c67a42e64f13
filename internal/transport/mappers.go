package transport

import "github.com/Skotchmaster/local_directory/internal/models"

func User(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role), CreatedAt: u.CreatedAt}
}

func Profile(u *models.User) ProfileResponse {
	return ProfileResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

func Category(c *models.Category) CategoryResponse {
	return CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func Categories(items []models.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(items))
	for i := range items {
		out = append(out, Category(&items[i]))
	}
	return out
}

func Review(r *models.Review) ReviewResponse {
	out := ReviewResponse{
		ID:         r.ID,
		Rating:     r.Rating,
		Comment:    r.Comment,
		BusinessID: r.BusinessID,
		UserID:     r.UserID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.User != nil {
		out.User = &NameRef{Name: r.User.Name}
	}
	if r.Business != nil {
		out.Business = &NameRef{Name: r.Business.Name}
	}
	return out
}

func Reviews(items []models.Review) []ReviewResponse {
	out := make([]ReviewResponse, 0, len(items))
	for i := range items {
		out = append(out, Review(&items[i]))
	}
	return out
}

// BusinessOptions picks which associations are rendered.
type BusinessOptions struct {
	Owner   bool
	Reviews bool
}

func Business(b *models.Business, opt BusinessOptions) BusinessResponse {
	out := BusinessResponse{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Address:     b.Address,
		Location:    b.Location,
		CategoryID:  b.CategoryID,
		OwnerID:     b.OwnerID,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.Category != nil {
		c := Category(b.Category)
		out.Category = &c
	}
	if opt.Owner && b.Owner != nil {
		out.Owner = &OwnerResponse{ID: b.Owner.ID, Name: b.Owner.Name, Email: b.Owner.Email, Role: string(b.Owner.Role)}
	}
	if opt.Reviews {
		rs := Reviews(b.Reviews)
		out.Reviews = &rs
	}
	return out
}

func Businesses(items []models.Business, opt BusinessOptions) []BusinessResponse {
	out := make([]BusinessResponse, 0, len(items))
	for i := range items {
		out = append(out, Business(&items[i], opt))
	}
	return out
}
