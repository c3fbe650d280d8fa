package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"projectboard/internal/model"
	"projectboard/internal/service"
	"projectboard/internal/service/servicetest"
)

func newProjectService(db *servicetest.DB, cascade bool) *service.ProjectService {
	return service.NewProjectService(
		servicetest.ProjectStore{DB: db},
		servicetest.TaskStore{DB: db},
		servicetest.CommentStore{DB: db},
		&servicetest.CapturePublisher{},
		cascade,
		zap.NewNop(),
	)
}

func mustUser(t *testing.T, db *servicetest.DB, name, email string) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: email, PasswordHash: "x"}
	require.NoError(t, servicetest.UserStore{DB: db}.Create(context.Background(), u))
	return u
}

func TestProjectRoundTrip(t *testing.T) {
	db := servicetest.NewDB()
	svc := newProjectService(db, true)
	owner := mustUser(t, db, "Alice", "alice@example.com")

	created, err := svc.Create(context.Background(), owner, "Website", "relaunch")
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := svc.Get(context.Background(), owner.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Website", got.Name)
	assert.Equal(t, "relaunch", got.Description)
	assert.Equal(t, owner.ID, got.OwnerID)
}

func TestProjectNotOwnedIsNotFound(t *testing.T) {
	db := servicetest.NewDB()
	svc := newProjectService(db, true)
	alice := mustUser(t, db, "Alice", "alice@example.com")
	bob := mustUser(t, db, "Bob", "bob@example.com")

	created, err := svc.Create(context.Background(), alice, "Website", "")
	require.NoError(t, err)

	// bob cannot see it, and cannot tell it exists
	_, err = svc.Get(context.Background(), bob.ID, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Update(context.Background(), bob.ID, created.ID, strPtr("Stolen"), nil)
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Delete(context.Background(), bob.ID, created.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestProjectUpdatePatchesFields(t *testing.T) {
	db := servicetest.NewDB()
	svc := newProjectService(db, true)
	owner := mustUser(t, db, "Alice", "alice@example.com")

	created, err := svc.Create(context.Background(), owner, "Website", "relaunch")
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), owner.ID, created.ID, strPtr("Website v2"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Website v2", updated.Name)
	assert.Equal(t, "relaunch", updated.Description, "nil field keeps stored value")
	assert.Equal(t, owner.ID, updated.OwnerID, "owner never changes")
}

func TestProjectListOwned(t *testing.T) {
	db := servicetest.NewDB()
	svc := newProjectService(db, true)
	alice := mustUser(t, db, "Alice", "alice@example.com")
	bob := mustUser(t, db, "Bob", "bob@example.com")

	_, err := svc.Create(context.Background(), alice, "One", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), bob, "Theirs", "")
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), alice, "Two", "")
	require.NoError(t, err)

	projects, err := svc.ListOwned(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "One", projects[0].Name)
	assert.Equal(t, "Two", projects[1].Name)
}

func TestProjectDeleteCascadePolicy(t *testing.T) {
	tests := []struct {
		name         string
		cascade      bool
		wantTasks    int
		wantComments int
	}{
		{"cascade removes children", true, 0, 0},
		{"no cascade orphans children", false, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := servicetest.NewDB()
			svc := newProjectService(db, tt.cascade)
			owner := mustUser(t, db, "Alice", "alice@example.com")

			project, err := svc.Create(context.Background(), owner, "Website", "")
			require.NoError(t, err)

			task := &model.Task{Title: "t", Status: model.StatusTodo, ProjectID: project.ID, AssignedToID: owner.ID}
			require.NoError(t, servicetest.TaskStore{DB: db}.CreateInProject(context.Background(), task, owner.ID))
			comment := &model.Comment{Text: "c", AuthorID: owner.ID, TaskID: task.ID}
			require.NoError(t, servicetest.CommentStore{DB: db}.CreateForTask(context.Background(), comment))

			require.NoError(t, svc.Delete(context.Background(), owner.ID, project.ID))
			assert.Len(t, db.Tasks, tt.wantTasks)
			assert.Len(t, db.Comments, tt.wantComments)
		})
	}
}

func TestProjectDetail(t *testing.T) {
	db := servicetest.NewDB()
	svc := newProjectService(db, true)
	owner := mustUser(t, db, "Alice", "alice@example.com")
	bob := mustUser(t, db, "Bob", "bob@example.com")

	project, err := svc.Create(context.Background(), owner, "Website", "")
	require.NoError(t, err)

	taskStore := servicetest.TaskStore{DB: db}
	first := &model.Task{Title: "first", Status: model.StatusTodo, ProjectID: project.ID, AssignedToID: bob.ID}
	require.NoError(t, taskStore.CreateInProject(context.Background(), first, owner.ID))
	second := &model.Task{Title: "second", Status: model.StatusTodo, ProjectID: project.ID, AssignedToID: owner.ID}
	require.NoError(t, taskStore.CreateInProject(context.Background(), second, owner.ID))

	commentStore := servicetest.CommentStore{DB: db}
	for _, text := range []string{"one", "two"} {
		c := &model.Comment{Text: text, AuthorID: bob.ID, TaskID: first.ID}
		require.NoError(t, commentStore.CreateForTask(context.Background(), c))
	}

	detail, err := svc.Detail(context.Background(), owner, project.ID)
	require.NoError(t, err)

	assert.Equal(t, owner.Ref(), detail.Owner)
	require.Len(t, detail.Tasks, 2)

	// task order matches creation order
	assert.Equal(t, "first", detail.Tasks[0].Title)
	assert.Equal(t, "second", detail.Tasks[1].Title)

	// assignee expanded
	assert.Equal(t, "Bob", detail.Tasks[0].AssignedTo.Name)

	// comment order preserved, grouped under the right task
	require.Len(t, detail.Tasks[0].Comments, 2)
	assert.Equal(t, "one", detail.Tasks[0].Comments[0].Text)
	assert.Equal(t, "two", detail.Tasks[0].Comments[1].Text)
	assert.Equal(t, "Bob", detail.Tasks[0].Comments[0].Author.Name)

	// zero-comment task gets an empty sequence, not nil
	require.NotNil(t, detail.Tasks[1].Comments)
	assert.Len(t, detail.Tasks[1].Comments, 0)
}

func TestProjectDetailNotOwned(t *testing.T) {
	db := servicetest.NewDB()
	svc := newProjectService(db, true)
	alice := mustUser(t, db, "Alice", "alice@example.com")
	bob := mustUser(t, db, "Bob", "bob@example.com")

	project, err := svc.Create(context.Background(), alice, "Website", "")
	require.NoError(t, err)

	_, err = svc.Detail(context.Background(), bob, project.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func strPtr(s string) *string {
	return &s
}
