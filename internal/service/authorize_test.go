package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/models"
)

func TestAuthorize(t *testing.T) {
	t.Parallel()

	ident := models.Identity{UserID: 7, Role: models.RoleUser}
	boom := errors.New("boom")

	tests := []struct {
		name   string
		lookup OwnerLookup
		want   error
	}{
		{name: "owner", lookup: func(context.Context, uint) (uint, error) { return 7, nil }, want: nil},
		{name: "not owner", lookup: func(context.Context, uint) (uint, error) { return 8, nil }, want: ErrForbidden},
		{name: "absent", lookup: func(context.Context, uint) (uint, error) { return 0, gorm.ErrRecordNotFound }, want: ErrNotFound},
		{name: "store error", lookup: func(context.Context, uint) (uint, error) { return 0, boom }, want: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(context.Background(), ident, 1, tt.lookup)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAuthorize_AdminIsNotOwner(t *testing.T) {
	admin := models.Identity{UserID: 1, Role: models.RoleAdmin}
	err := Authorize(context.Background(), admin, 3, func(context.Context, uint) (uint, error) { return 2, nil })
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestErrInvalidCategoryIsValidation(t *testing.T) {
	assert.ErrorIs(t, ErrInvalidCategory, ErrValidation)
}
