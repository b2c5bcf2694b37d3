// Package memory is an in-process implementation of the repositories,
// selected with STORAGE=memory.  It mirrors the MySQL schema rules that the
// services rely on: unique emails and category names, foreign keys, and
// cascading deletes from offers to comments.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/repository"
)

// Store holds every table behind one mutex.  The typed views returned by
// Users, Offers, Categories, Comments and Tokens share it.
type Store struct {
	mu sync.Mutex

	seq        map[string]uint64
	users      map[uint64]model.User
	offers     map[uint64]model.Offer
	links      map[uint64][]uint64 // offer id -> category ids
	categories map[uint64]model.Category
	comments   map[uint64]model.Comment
	tokens     map[string]model.RefreshToken // by hash

	now func() time.Time
}

// New returns an empty store.  Categories can be pre-populated through
// Categories().Create.
func New() *Store {
	return &Store{
		seq:        map[string]uint64{},
		users:      map[uint64]model.User{},
		offers:     map[uint64]model.Offer{},
		links:      map[uint64][]uint64{},
		categories: map[uint64]model.Category{},
		comments:   map[uint64]model.Comment{},
		tokens:     map[string]model.RefreshToken{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) next(table string) uint64 {
	s.seq[table]++
	return s.seq[table]
}

// Users returns the users view.
func (s *Store) Users() *Users { return &Users{s} }

// Offers returns the offers view.
func (s *Store) Offers() *Offers { return &Offers{s} }

// Categories returns the categories view.
func (s *Store) Categories() *Categories { return &Categories{s} }

// Comments returns the comments view.
func (s *Store) Comments() *Comments { return &Comments{s} }

// Tokens returns the refresh tokens view.
func (s *Store) Tokens() *Tokens { return &Tokens{s} }

// ---- users ----

type Users struct{ s *Store }

func (r *Users) Create(_ context.Context, u *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = repository.NormalizeEmail(u.Email)
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	u.ID = r.s.next("users")
	u.CreatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

func (r *Users) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = repository.NormalizeEmail(email)
	for _, u := range r.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) GetByID(_ context.Context, id uint64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) List(_ context.Context) ([]*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---- refresh tokens ----

type Tokens struct{ s *Store }

func (r *Tokens) Store(_ context.Context, userID uint64, tokenHash string, exp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.insertLocked(userID, tokenHash, exp)
}

func (r *Tokens) insertLocked(userID uint64, tokenHash string, exp time.Time) error {
	if _, ok := r.s.users[userID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, dup := r.s.tokens[tokenHash]; dup {
		return repository.ErrConflict
	}
	r.s.tokens[tokenHash] = model.RefreshToken{
		ID:        r.s.next("refresh_tokens"),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: exp,
		CreatedAt: r.s.now(),
	}
	return nil
}

func (r *Tokens) Find(_ context.Context, tokenHash string) (*model.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenHash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *Tokens) Delete(_ context.Context, tokenHash string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.tokens[tokenHash]
	delete(r.s.tokens, tokenHash)
	return ok, nil
}

func (r *Tokens) Rotate(_ context.Context, oldHash string, userID uint64, newHash string, exp time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.tokens[oldHash]
	if !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tokens, oldHash)
	if err := r.insertLocked(userID, newHash, exp); err != nil {
		r.s.tokens[oldHash] = old
		return err
	}
	return nil
}

func (r *Tokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for h, t := range r.s.tokens {
		if t.Expired(now) {
			delete(r.s.tokens, h)
			n++
		}
	}
	return n, nil
}

// ---- categories ----

type Categories struct{ s *Store }

func (r *Categories) List(_ context.Context) ([]*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[uint64]int{}
	for _, ids := range r.s.links {
		for _, id := range ids {
			counts[id]++
		}
	}
	out := make([]*model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		c := c
		c.OffersCount = counts[c.ID]
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Categories) GetByID(_ context.Context, id uint64) (*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Categories) Create(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.Name = strings.TrimSpace(c.Name)
	for _, existing := range r.s.categories {
		if strings.EqualFold(existing.Name, c.Name) {
			return repository.ErrConflict
		}
	}
	c.ID = r.s.next("categories")
	r.s.categories[c.ID] = model.Category{ID: c.ID, Name: c.Name}
	return nil
}

// ---- offers ----

type Offers struct{ s *Store }

func (r *Offers) List(_ context.Context) ([]*model.Offer, error) {
	return r.filter(func(model.Offer) bool { return true }), nil
}

func (r *Offers) ListByCategory(_ context.Context, categoryID uint64) ([]*model.Offer, error) {
	return r.filter(func(o model.Offer) bool {
		for _, id := range r.s.links[o.ID] {
			if id == categoryID {
				return true
			}
		}
		return false
	}), nil
}

func (r *Offers) Search(_ context.Context, query string) ([]*model.Offer, error) {
	q := strings.ToLower(query)
	return r.filter(func(o model.Offer) bool {
		return strings.Contains(strings.ToLower(o.Title), q)
	}), nil
}

func (r *Offers) GetByID(_ context.Context, id uint64) (*model.Offer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.offers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withCategoriesLocked(o), nil
}

func (r *Offers) Create(_ context.Context, o *model.Offer, categoryIDs []uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[o.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	ids, err := r.checkCategoriesLocked(categoryIDs)
	if err != nil {
		return err
	}
	now := r.s.now()
	o.ID = r.s.next("offers")
	o.CreatedAt, o.UpdatedAt = now, now
	stored := *o
	stored.Categories = nil
	r.s.offers[o.ID] = stored
	r.s.links[o.ID] = ids
	*o = *r.withCategoriesLocked(stored)
	return nil
}

func (r *Offers) Update(_ context.Context, o *model.Offer, categoryIDs []uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.offers[o.ID]
	if !ok {
		return repository.ErrNotFound
	}
	ids, err := r.checkCategoriesLocked(categoryIDs)
	if err != nil {
		return err
	}
	cur.Title, cur.Description, cur.Type, cur.Sum, cur.Picture = o.Title, o.Description, o.Type, o.Sum, o.Picture
	cur.UpdatedAt = r.s.now()
	r.s.offers[o.ID] = cur
	r.s.links[o.ID] = ids
	*o = *r.withCategoriesLocked(cur)
	return nil
}

func (r *Offers) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.offers[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.offers, id)
	delete(r.s.links, id)
	for cid, c := range r.s.comments {
		if c.OfferID == id {
			delete(r.s.comments, cid)
		}
	}
	return nil
}

func (r *Offers) filter(keep func(model.Offer) bool) []*model.Offer {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Offer{}
	for _, o := range r.s.offers {
		if keep(o) {
			out = append(out, r.withCategoriesLocked(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *Offers) checkCategoriesLocked(ids []uint64) ([]uint64, error) {
	seen := map[uint64]bool{}
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := r.s.categories[id]; !ok {
			return nil, repository.ErrInvalidReference
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (r *Offers) withCategoriesLocked(o model.Offer) *model.Offer {
	o.Categories = []*model.Category{}
	for _, id := range r.s.links[o.ID] {
		c := r.s.categories[id]
		o.Categories = append(o.Categories, &model.Category{ID: c.ID, Name: c.Name})
	}
	return &o
}

// ---- comments ----

type Comments struct{ s *Store }

func (r *Comments) ListByOffer(_ context.Context, offerID uint64) ([]*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Comment{}
	for _, c := range r.s.comments {
		if c.OfferID == offerID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Comments) GetByID(_ context.Context, id uint64) (*model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.comments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (r *Comments) Create(_ context.Context, c *model.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.offers[c.OfferID]; !ok {
		return repository.ErrInvalidReference
	}
	if _, ok := r.s.users[c.UserID]; !ok {
		return repository.ErrInvalidReference
	}
	c.ID = r.s.next("comments")
	c.CreatedAt = r.s.now()
	r.s.comments[c.ID] = *c
	return nil
}

func (r *Comments) Delete(_ context.Context, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.comments, id)
	return nil
}
