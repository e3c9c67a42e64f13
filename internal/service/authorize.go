package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/models"
)

// OwnerLookup resolves the id of the user owning a resource. It returns
// gorm.ErrRecordNotFound when the resource does not exist.
type OwnerLookup func(ctx context.Context, id uint) (uint, error)

// Authorize allows ident to mutate resource id only when it owns it.
func Authorize(ctx context.Context, ident models.Identity, id uint, lookup OwnerLookup) error {
	owner, err := lookup(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if owner != ident.UserID {
		return ErrForbidden
	}
	return nil
}
