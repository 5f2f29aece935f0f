package service

import (
	"context"
	"sort"
	"sync"

	"github.com/cpms/cpms-api/internal/core/domain"
	"github.com/cpms/cpms-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*domain.User
	err    error // if set, every call returns it
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.nextID++
	c := cloneUser(user)
	c.ID = r.nextID
	r.users[c.ID] = c
	return cloneUser(c), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubUserCache struct {
	users map[string]*domain.User
	gets  int
	hits  int
}

func newStubUserCache() *stubUserCache {
	return &stubUserCache{users: make(map[string]*domain.User)}
}

func (c *stubUserCache) Get(_ context.Context, email string) (*domain.User, bool, error) {
	c.gets++
	u, ok := c.users[email]
	if ok {
		c.hits++
	}
	return cloneUser(u), ok, nil
}

func (c *stubUserCache) Set(_ context.Context, user *domain.User) error {
	c.users[user.Email] = cloneUser(user)
	return nil
}

type stubClientRepo struct {
	nextID  int64
	clients map[int64]*domain.Client
	deleted []int64
}

func newStubClientRepo() *stubClientRepo {
	return &stubClientRepo{clients: make(map[int64]*domain.Client)}
}

// add seeds a client directly and returns its id.
func (r *stubClientRepo) add(name string, ownerID int64) int64 {
	r.nextID++
	r.clients[r.nextID] = &domain.Client{ID: r.nextID, Name: name, OwnerID: ownerID}
	return r.nextID
}

func (r *stubClientRepo) Create(_ context.Context, c *domain.Client) (*domain.Client, error) {
	for _, existing := range r.clients {
		if existing.OwnerID == c.OwnerID && existing.Name == c.Name {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.nextID++
	clone := *c
	clone.ID = r.nextID
	r.clients[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubClientRepo) FindByID(_ context.Context, id int64) (*domain.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, domain.NotFound(domain.ResourceClient, id)
	}
	clone := *c
	return &clone, nil
}

func (r *stubClientRepo) List(_ context.Context, ownerID int64) ([]*domain.Client, error) {
	var out []*domain.Client
	for _, c := range r.clients {
		if ownerID != 0 && c.OwnerID != ownerID {
			continue
		}
		clone := *c
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubClientRepo) Update(_ context.Context, c *domain.Client) (*domain.Client, error) {
	if _, ok := r.clients[c.ID]; !ok {
		return nil, domain.NotFound(domain.ResourceClient, c.ID)
	}
	for _, existing := range r.clients {
		if existing.ID != c.ID && existing.OwnerID == c.OwnerID && existing.Name == c.Name {
			return nil, domain.ErrAlreadyExists
		}
	}
	clone := *c
	r.clients[c.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubClientRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.clients[id]; !ok {
		return domain.NotFound(domain.ResourceClient, id)
	}
	delete(r.clients, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type stubProjectRepo struct {
	nextID     int64
	projects   map[int64]*domain.Project
	clients    *stubClientRepo
	lastFilter ports.ProjectFilter
}

func newStubProjectRepo(clients *stubClientRepo) *stubProjectRepo {
	return &stubProjectRepo{projects: make(map[int64]*domain.Project), clients: clients}
}

func (r *stubProjectRepo) add(title string, clientID int64) int64 {
	r.nextID++
	r.projects[r.nextID] = &domain.Project{ID: r.nextID, Title: title, ClientID: clientID, Status: domain.ProjectPlanned}
	return r.nextID
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) (*domain.Project, error) {
	for _, existing := range r.projects {
		if existing.ClientID == p.ClientID && existing.Title == p.Title {
			return nil, domain.ErrAlreadyExists
		}
	}
	r.nextID++
	clone := *p
	clone.ID = r.nextID
	r.projects[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, domain.NotFound(domain.ResourceProject, id)
	}
	clone := *p
	return &clone, nil
}

// List mirrors the SQL join: OwnerID filters on the owning client.
func (r *stubProjectRepo) List(_ context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	r.lastFilter = f
	var out []*domain.Project
	for _, p := range r.projects {
		if f.ClientID != 0 && p.ClientID != f.ClientID {
			continue
		}
		if f.OwnerID != 0 {
			c, ok := r.clients.clients[p.ClientID]
			if !ok || c.OwnerID != f.OwnerID {
				continue
			}
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProjectRepo) Update(_ context.Context, p *domain.Project) (*domain.Project, error) {
	for _, existing := range r.projects {
		if existing.ID != p.ID && existing.ClientID == p.ClientID && existing.Title == p.Title {
			return nil, domain.ErrAlreadyExists
		}
	}
	clone := *p
	r.projects[p.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubProjectRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.projects[id]; !ok {
		return domain.NotFound(domain.ResourceProject, id)
	}
	delete(r.projects, id)
	return nil
}
