// Package servicetest provides in-memory store fakes for service and HTTP
// tests. Behavior mirrors the pgx repositories: missing rows come back as
// pgx.ErrNoRows and a duplicate email surfaces as a unique violation.
package servicetest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"projectboard/internal/model"
)

// DB is the shared backing state. Per-entity store fakes wrap it so that
// cross-entity checks (task creation gating on the project, cascade delete)
// see the same data.
type DB struct {
	nextID   int
	Users    []*model.User
	Projects []*model.Project
	Tasks    []*model.Task
	Comments []*model.Comment
}

func NewDB() *DB {
	return &DB{}
}

func (d *DB) id() int {
	d.nextID++
	return d.nextID
}

func (d *DB) userRef(id int) model.UserRef {
	for _, u := range d.Users {
		if u.ID == id {
			return u.Ref()
		}
	}
	return model.UserRef{ID: id}
}

func (d *DB) findTask(id int) (*model.Task, error) {
	for _, t := range d.Tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// UserStore implements service.UserStore.
type UserStore struct {
	DB *DB
}

func (s UserStore) Create(_ context.Context, u *model.User) error {
	for _, existing := range s.DB.Users {
		if existing.Email == u.Email {
			return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
		}
	}
	u.ID = s.DB.id()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	cp := *u
	s.DB.Users = append(s.DB.Users, &cp)
	return nil
}

func (s UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.DB.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s UserStore) FindByID(_ context.Context, id int) (*model.User, error) {
	for _, u := range s.DB.Users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s UserStore) List(_ context.Context) ([]model.User, error) {
	users := make([]model.User, 0, len(s.DB.Users))
	for _, u := range s.DB.Users {
		cp := *u
		cp.PasswordHash = ""
		users = append(users, cp)
	}
	return users, nil
}

// ProjectStore implements service.ProjectStore.
type ProjectStore struct {
	DB *DB
}

func (s ProjectStore) Insert(_ context.Context, p *model.Project) error {
	p.ID = s.DB.id()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	s.DB.Projects = append(s.DB.Projects, &cp)
	return nil
}

func (s ProjectStore) ListByOwner(_ context.Context, ownerID int) ([]model.Project, error) {
	projects := make([]model.Project, 0)
	for _, p := range s.DB.Projects {
		if p.OwnerID == ownerID {
			projects = append(projects, *p)
		}
	}
	return projects, nil
}

func (s ProjectStore) FindOwned(_ context.Context, id, ownerID int) (*model.Project, error) {
	for _, p := range s.DB.Projects {
		if p.ID == id && p.OwnerID == ownerID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s ProjectStore) FindByID(_ context.Context, id int) (*model.Project, error) {
	for _, p := range s.DB.Projects {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s ProjectStore) Update(_ context.Context, id, ownerID int, name, description *string) (*model.Project, error) {
	for _, p := range s.DB.Projects {
		if p.ID == id && p.OwnerID == ownerID {
			if name != nil {
				p.Name = *name
			}
			if description != nil {
				p.Description = *description
			}
			p.UpdatedAt = time.Now()
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s ProjectStore) Delete(_ context.Context, id, ownerID int, cascade bool) error {
	idx := -1
	for i, p := range s.DB.Projects {
		if p.ID == id && p.OwnerID == ownerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return pgx.ErrNoRows
	}
	s.DB.Projects = append(s.DB.Projects[:idx], s.DB.Projects[idx+1:]...)

	if cascade {
		removed := map[int]bool{}
		kept := make([]*model.Task, 0, len(s.DB.Tasks))
		for _, t := range s.DB.Tasks {
			if t.ProjectID == id {
				removed[t.ID] = true
				continue
			}
			kept = append(kept, t)
		}
		s.DB.Tasks = kept

		keptComments := make([]*model.Comment, 0, len(s.DB.Comments))
		for _, c := range s.DB.Comments {
			if removed[c.TaskID] {
				continue
			}
			keptComments = append(keptComments, c)
		}
		s.DB.Comments = keptComments
	}
	return nil
}

// TaskStore implements service.TaskStore.
type TaskStore struct {
	DB *DB
}

func (s TaskStore) CreateInProject(ctx context.Context, t *model.Task, ownerID int) error {
	if _, err := (ProjectStore{DB: s.DB}).FindOwned(ctx, t.ProjectID, ownerID); err != nil {
		return err
	}
	t.ID = s.DB.id()
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	s.DB.Tasks = append(s.DB.Tasks, &cp)
	return nil
}

func (s TaskStore) ListByProject(_ context.Context, projectID int) ([]model.TaskWithAssignee, error) {
	tasks := make([]model.TaskWithAssignee, 0)
	for _, t := range s.DB.Tasks {
		if t.ProjectID != projectID {
			continue
		}
		tasks = append(tasks, model.TaskWithAssignee{
			Task:       *t,
			AssignedTo: s.DB.userRef(t.AssignedToID),
		})
	}
	return tasks, nil
}

func (s TaskStore) FindByID(_ context.Context, id int) (*model.Task, error) {
	t, err := s.DB.findTask(id)
	if err != nil {
		return nil, err
	}
	cp := *t
	return &cp, nil
}

func (s TaskStore) UpdateStatus(_ context.Context, id int, status string) (*model.Task, error) {
	t, err := s.DB.findTask(id)
	if err != nil {
		return nil, err
	}
	t.Status = status
	t.UpdatedAt = time.Now()
	cp := *t
	return &cp, nil
}

func (s TaskStore) Delete(_ context.Context, id int) error {
	for i, t := range s.DB.Tasks {
		if t.ID == id {
			s.DB.Tasks = append(s.DB.Tasks[:i], s.DB.Tasks[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// CommentStore implements service.CommentStore.
type CommentStore struct {
	DB *DB
}

func (s CommentStore) CreateForTask(_ context.Context, c *model.Comment) error {
	if _, err := s.DB.findTask(c.TaskID); err != nil {
		return err
	}
	c.ID = s.DB.id()
	c.CreatedAt = time.Now()
	cp := *c
	s.DB.Comments = append(s.DB.Comments, &cp)
	return nil
}

func (s CommentStore) ListByTaskIDs(_ context.Context, taskIDs []int) ([]model.CommentWithAuthor, error) {
	wanted := map[int]bool{}
	for _, id := range taskIDs {
		wanted[id] = true
	}
	comments := make([]model.CommentWithAuthor, 0)
	for _, c := range s.DB.Comments {
		if !wanted[c.TaskID] {
			continue
		}
		comments = append(comments, model.CommentWithAuthor{
			Comment: *c,
			Author:  s.DB.userRef(c.AuthorID),
		})
	}
	return comments, nil
}

// CapturePublisher records every published routing key.
type CapturePublisher struct {
	Keys []string
}

func (p *CapturePublisher) Publish(routingKey string, _ any) error {
	p.Keys = append(p.Keys, routingKey)
	return nil
}

// MapCache is an in-memory stand-in for the redis user cache.
type MapCache struct {
	Entries map[int]*model.User
	Hits    int
}

func NewMapCache() *MapCache {
	return &MapCache{Entries: map[int]*model.User{}}
}

func (c *MapCache) Get(_ context.Context, id int) (*model.User, bool) {
	u, ok := c.Entries[id]
	if ok {
		c.Hits++
	}
	return u, ok
}

func (c *MapCache) Set(_ context.Context, u *model.User) {
	c.Entries[u.ID] = u
}
