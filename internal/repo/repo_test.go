package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/local_directory/internal/db/dbtest"
	"github.com/Skotchmaster/local_directory/internal/models"
)

type fixture struct {
	rp    *GormRepo
	owner *models.User
	other *models.User
	cat   *models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rp := New(dbtest.Open(t))
	ctx := context.Background()

	owner := &models.User{Name: "Owner", Email: "owner@x.com", PasswordHash: "h", Role: models.RoleAdmin}
	require.NoError(t, rp.CreateUserIfNotExists(ctx, owner))
	other := &models.User{Name: "Other", Email: "other@x.com", PasswordHash: "h", Role: models.RoleUser}
	require.NoError(t, rp.CreateUserIfNotExists(ctx, other))

	cat := &models.Category{Name: "Bakery"}
	_, err := rp.CreateCategoryIfNotExists(ctx, cat)
	require.NoError(t, err)

	return &fixture{rp: rp, owner: owner, other: other, cat: cat}
}

func (f *fixture) business(t *testing.T, name, location string) *models.Business {
	t.Helper()
	b, err := f.rp.CreateBusiness(context.Background(), &models.Business{
		Name: name, Address: "1 Main St", Location: location,
		CategoryID: f.cat.ID, OwnerID: f.owner.ID,
	})
	require.NoError(t, err)
	return b
}

func TestCreateUserIfNotExists_Duplicate(t *testing.T) {
	f := newFixture(t)

	dup := &models.User{Name: "Again", Email: "owner@x.com", PasswordHash: "h", Role: models.RoleUser}
	err := f.rp.CreateUserIfNotExists(context.Background(), dup)
	assert.ErrorIs(t, err, ErrUserAlreadyExist)

	u, err := f.rp.GetUserByEmail(context.Background(), "owner@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Owner", u.Name)

	_, err = f.rp.GetUserByID(context.Background(), 9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// insertBeforeCreate runs sql after the FirstOrCreate lookup and before its
// insert into table, as a concurrent writer would.
func insertBeforeCreate(t *testing.T, rp *GormRepo, table, sql string, args ...any) {
	t.Helper()
	done := false
	err := rp.DB.Callback().Create().Before("gorm:begin_transaction").Register("race_"+table, func(tx *gorm.DB) {
		if done || tx.Statement.Table != table {
			return
		}
		done = true
		_ = tx.AddError(tx.Session(&gorm.Session{NewDB: true}).Exec(sql, args...).Error)
	})
	require.NoError(t, err)
}

func TestCreateUserIfNotExists_ConcurrentInsert(t *testing.T) {
	f := newFixture(t)
	insertBeforeCreate(t, f.rp, "users",
		"INSERT INTO users (name, email, password_hash, role, created_at, updated_at) VALUES (?, ?, 'h', 'USER', ?, ?)",
		"First", "race@x.com", time.Now(), time.Now())

	err := f.rp.CreateUserIfNotExists(context.Background(), &models.User{Name: "Second", Email: "race@x.com", PasswordHash: "h", Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrUserAlreadyExist)

	u, err := f.rp.GetUserByEmail(context.Background(), "race@x.com")
	require.NoError(t, err)
	assert.Equal(t, "First", u.Name)
}

func TestCreateCategoryIfNotExists_ConcurrentInsert(t *testing.T) {
	f := newFixture(t)
	insertBeforeCreate(t, f.rp, "categories",
		"INSERT INTO categories (name, created_at, updated_at) VALUES (?, ?, ?)", "Florist", time.Now(), time.Now())

	created, err := f.rp.CreateCategoryIfNotExists(context.Background(), &models.Category{Name: "Florist"})
	require.NoError(t, err)
	assert.False(t, created)

	got, err := f.rp.FindCategoryByName(context.Background(), "Florist")
	require.NoError(t, err)
	assert.Equal(t, "Florist", got.Name)
}

func TestEnsureCategories_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.rp.EnsureCategories(ctx, []string{"Bakery", "Pharmacy", "Tutoring"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.rp.EnsureCategories(ctx, []string{"Bakery", "Pharmacy", "Tutoring"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	cats, err := f.rp.ListCategories(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Bakery", "Pharmacy", "Tutoring"}, names)
	assert.Equal(t, f.cat.ID, cats[0].ID)
}

func TestCreateBusiness_LoadsCategoryAndOwner(t *testing.T) {
	f := newFixture(t)

	b := f.business(t, "Crumbs", "Downtown")
	require.NotNil(t, b.Category)
	require.NotNil(t, b.Owner)
	assert.Equal(t, "Bakery", b.Category.Name)
	assert.Equal(t, f.owner.ID, b.Owner.ID)
}

func TestCreateBusiness_UnknownCategoryRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.rp.CreateBusiness(context.Background(), &models.Business{
		Name: "X", Address: "a", Location: "l", CategoryID: 4242, OwnerID: f.owner.ID,
	})
	assert.Error(t, err)
}

func TestListBusinesses_FilterAndSort(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := &models.Category{Name: "Pharmacy"}
	_, err := f.rp.CreateCategoryIfNotExists(ctx, other)
	require.NoError(t, err)

	f.business(t, "Beta", "North Side")
	f.business(t, "Alpha", "South Side")
	_, err = f.rp.CreateBusiness(ctx, &models.Business{
		Name: "Gamma", Address: "a", Location: "North End", CategoryID: other.ID, OwnerID: f.owner.ID,
	})
	require.NoError(t, err)

	items, err := f.rp.ListBusinesses(ctx, BusinessFilter{CategoryID: &f.cat.ID}, Sort{Column: "name"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Alpha", items[0].Name)
	assert.Equal(t, "Beta", items[1].Name)
	for _, b := range items {
		assert.Equal(t, f.cat.ID, b.CategoryID)
		require.NotNil(t, b.Category)
	}

	items, err = f.rp.ListBusinesses(ctx, BusinessFilter{Location: "North"}, Sort{Column: "name", Desc: true})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Gamma", items[0].Name)
	assert.Equal(t, "Beta", items[1].Name)

	items, err = f.rp.ListBusinesses(ctx, BusinessFilter{}, Sort{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Beta", items[0].Name)
}

func TestListBusinesses_LocationWildcardsAreLiteral(t *testing.T) {
	f := newFixture(t)

	f.business(t, "A", "100% Downtown")
	f.business(t, "B", "Downtown")

	items, err := f.rp.ListBusinesses(context.Background(), BusinessFilter{Location: "%"}, Sort{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "A", items[0].Name)
}

func TestUpdateBusiness(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "Old", "Here")

	b.Name = "New"
	b.Description = "fresh bread"
	updated, err := f.rp.UpdateBusiness(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Name)
	assert.Equal(t, "fresh bread", updated.Description)
	require.NotNil(t, updated.Owner)

	_, err = f.rp.UpdateBusiness(context.Background(), &models.Business{ID: 777, Name: "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteBusiness_RemovesReviews(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.business(t, "Gone", "Here")

	_, err := f.rp.CreateReview(ctx, &models.Review{Rating: 4, BusinessID: b.ID, UserID: f.other.ID})
	require.NoError(t, err)

	require.NoError(t, f.rp.DeleteBusiness(ctx, b.ID))

	_, err = f.rp.GetBusiness(ctx, b.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	all, err := f.rp.ListAllReviews(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, f.rp.DeleteBusiness(ctx, b.ID), gorm.ErrRecordNotFound)
}

func TestListBusinessesByOwner_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.business(t, "First", "x")
	second := f.business(t, "Second", "x")
	require.NoError(t, f.rp.DB.Model(&models.Business{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour).UTC()).Error)

	items, err := f.rp.ListBusinessesByOwner(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	items, err = f.rp.ListBusinessesByOwner(ctx, f.other.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestBusinessOwner(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "Mine", "x")

	owner, err := f.rp.BusinessOwner(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, owner)

	_, err = f.rp.BusinessOwner(context.Background(), 31337)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSearchAndGetByIDs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.business(t, "Sourdough House", "Old Town")
	b := f.business(t, "Corner Pharmacy", "Harbor")
	c := f.business(t, "Bagels", "Old Town")

	total, items, err := f.rp.SearchBusinesses(ctx, "old town", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, "Bagels", items[0].Name)

	total, items, err = f.rp.SearchBusinesses(ctx, "old town", 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Sourdough House", items[0].Name)

	got, err := f.rp.GetBusinessesByIDs(ctx, []uint{c.ID, 999, a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []uint{c.ID, a.ID, b.ID}, []uint{got[0].ID, got[1].ID, got[2].ID})
}

func TestReviews_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.business(t, "Rated", "x")

	r1, err := f.rp.CreateReview(ctx, &models.Review{Rating: 5, Comment: "great", BusinessID: b.ID, UserID: f.other.ID})
	require.NoError(t, err)
	require.NotNil(t, r1.User)
	assert.Equal(t, "Other", r1.User.Name)

	r2, err := f.rp.CreateReview(ctx, &models.Review{Rating: 2, Comment: "meh", BusinessID: b.ID, UserID: f.owner.ID})
	require.NoError(t, err)

	five := 5
	items, err := f.rp.ListReviews(ctx, ReviewFilter{BusinessID: b.ID, Rating: &five}, Sort{Desc: true})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, r1.ID, items[0].ID)
	require.NotNil(t, items[0].Business)
	assert.Equal(t, "Rated", items[0].Business.Name)

	items, err = f.rp.ListReviews(ctx, ReviewFilter{BusinessID: b.ID}, Sort{Column: "rating"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, r2.ID, items[0].ID)

	owner, err := f.rp.ReviewOwner(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, owner)

	upd, err := f.rp.UpdateReview(ctx, r1.ID, 3, "changed")
	require.NoError(t, err)
	assert.Equal(t, 3, upd.Rating)
	assert.Equal(t, "changed", upd.Comment)

	require.NoError(t, f.rp.DeleteReview(ctx, r1.ID))
	assert.ErrorIs(t, f.rp.DeleteReview(ctx, r1.ID), gorm.ErrRecordNotFound)
	_, err = f.rp.ReviewOwner(ctx, r1.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	all, err := f.rp.ListAllReviews(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, r2.ID, all[0].ID)
}

func TestCreateReview_OrphanRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.rp.CreateReview(context.Background(), &models.Review{Rating: 3, BusinessID: 5555, UserID: f.other.ID})
	assert.Error(t, err)
}

func TestCreateReview_RatingCheck(t *testing.T) {
	f := newFixture(t)
	b := f.business(t, "Checked", "x")

	_, err := f.rp.CreateReview(context.Background(), &models.Review{Rating: 9, BusinessID: b.ID, UserID: f.other.ID})
	assert.Error(t, err)
}
