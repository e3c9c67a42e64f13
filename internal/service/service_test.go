package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/local_directory/internal/db/dbtest"
	"github.com/Skotchmaster/local_directory/internal/events"
	"github.com/Skotchmaster/local_directory/internal/models"
	"github.com/Skotchmaster/local_directory/internal/repo"
	"github.com/Skotchmaster/local_directory/internal/search"
	"github.com/Skotchmaster/local_directory/internal/tokens"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeIndex struct {
	docs     map[uint]search.Doc
	queryErr error
	hits     []uint
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[uint]search.Doc{}} }

func (f *fakeIndex) Put(_ context.Context, d search.Doc) error {
	f.docs[d.ID] = d
	return nil
}

func (f *fakeIndex) Remove(_ context.Context, id uint) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Query(context.Context, string, int, int) (int64, []uint, error) {
	if f.queryErr != nil {
		return 0, nil, f.queryErr
	}
	return int64(len(f.hits)), f.hits, nil
}

var errIndexDown = errors.New("index down")

type env struct {
	rp         *repo.GormRepo
	pub        *recordingPublisher
	index      *fakeIndex
	codec      *tokens.Codec
	users      *UserService
	categories *CategoryService
	businesses *BusinessService
	reviews    *ReviewService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	rp := repo.New(dbtest.Open(t))
	pub := &recordingPublisher{}
	idx := newFakeIndex()
	codec := tokens.NewCodec([]byte("test-jwt-secret"), time.Hour)

	e := &env{
		rp:         rp,
		pub:        pub,
		index:      idx,
		codec:      codec,
		users:      &UserService{Repo: rp, Tokens: codec, Events: pub},
		categories: &CategoryService{Repo: rp, Events: pub},
		businesses: &BusinessService{Repo: rp, Events: pub, Index: idx},
		reviews:    &ReviewService{Repo: rp, Events: pub},
	}
	_, err := e.categories.EnsureDefaults(context.Background())
	require.NoError(t, err)
	return e
}

func (e *env) register(t *testing.T, email string, role models.Role) models.Identity {
	t.Helper()
	res, err := e.users.Register(context.Background(), RegisterInput{
		Name: "User " + email, Email: email, Password: "pw", Role: string(role),
	})
	require.NoError(t, err)
	return models.Identity{UserID: res.User.ID, Role: res.User.Role}
}

func (e *env) business(t *testing.T, owner models.Identity, name, category string) *models.Business {
	t.Helper()
	b, err := e.businesses.Create(context.Background(), owner, BusinessInput{
		Name: name, Address: "1 Main St", Location: "Old Town", Category: category,
	})
	require.NoError(t, err)
	return b
}
