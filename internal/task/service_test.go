package task

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/choreclock/internal/apperr"
	"github.com/dukerupert/choreclock/internal/auth"
	"github.com/dukerupert/choreclock/internal/database"
	"github.com/dukerupert/choreclock/internal/model"
	"github.com/dukerupert/choreclock/internal/store"
	"github.com/dukerupert/choreclock/internal/websocket"
)

type notifyCall struct {
	userID, householdID int64
	title, message, typ string
	relatedID           *int64
}

type fakeNotifier struct {
	calls []notifyCall
	err   error
}

func (f *fakeNotifier) Notify(userID, householdID int64, title, message, notifType string, relatedID *int64) error {
	f.calls = append(f.calls, notifyCall{userID, householdID, title, message, notifType, relatedID})
	return f.err
}

type recorder struct{ msgs []websocket.Message }

func (r *recorder) Broadcast(_ int64, msg websocket.Message) { r.msgs = append(r.msgs, msg) }

type fixture struct {
	svc       *Service
	notifier  *fakeNotifier
	events    *recorder
	tasks     *store.TaskStore
	templates *store.TemplateStore
	admin     auth.Actor
	member    auth.Actor
	member2   auth.Actor
	outsider  auth.Actor
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := store.NewUserStore(db)
	households := store.NewHouseholdStore(db)

	admin, err := users.Create("admin@example.com", "Ada", "Admin")
	require.NoError(t, err)
	h, err := households.Create("Home", admin.ID)
	require.NoError(t, err)
	admin, err = users.GetByID(admin.ID)
	require.NoError(t, err)

	join := func(email, first string) *model.User {
		u, err := users.Create(email, first, "Member")
		require.NoError(t, err)
		u, err = users.JoinHousehold(u.ID, h.ID, model.RoleMember)
		require.NoError(t, err)
		return u
	}
	member := join("member@example.com", "Max")
	member2 := join("member2@example.com", "Mia")

	outsider, err := users.Create("outsider@example.com", "Oli", "Other")
	require.NoError(t, err)
	_, err = households.Create("Elsewhere", outsider.ID)
	require.NoError(t, err)
	outsider, err = users.GetByID(outsider.ID)
	require.NoError(t, err)

	f := &fixture{
		notifier:  &fakeNotifier{},
		events:    &recorder{},
		tasks:     store.NewTaskStore(db),
		templates: store.NewTemplateStore(db),
		admin:     auth.ActorFromUser(admin, 0),
		member:    auth.ActorFromUser(member, 0),
		member2:   auth.ActorFromUser(member2, 0),
		outsider:  auth.ActorFromUser(outsider, 0),
	}
	f.svc = NewService(f.tasks, f.templates, users, f.notifier, f.events, time.UTC, slog.Default())
	return f
}

func intp(n int) *int { return &n }

func (f *fixture) assignedTask(t *testing.T, assignee *int64, est *int) *model.Task {
	t.Helper()
	task, err := f.svc.Create(f.admin, CreateInput{Title: "Vacuum", AssignedTo: assignee, EstimatedMinutes: est})
	require.NoError(t, err)
	return task
}

func TestCreateRequiresAdmin(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(f.member, CreateInput{Title: "Vacuum"})
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	task := f.assignedTask(t, &f.member.UserID, intp(20))
	require.Equal(t, model.TaskAssigned, task.Status)
	require.Equal(t, f.admin.UserID, task.AssignedBy)
	require.Nil(t, task.ActualMinutes)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(f.admin, CreateInput{Title: "  "})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(f.admin, CreateInput{Title: "Vacuum", EstimatedMinutes: intp(-1)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Create(f.admin, CreateInput{Title: "Vacuum", AssignedTo: &f.outsider.UserID})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCompleteByAssignee(t *testing.T) {
	f := setup(t)
	task := f.assignedTask(t, &f.member.UserID, intp(20))

	_, err := f.svc.Complete(f.member2, task.ID, intp(25))
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	done, err := f.svc.Complete(f.member, task.ID, intp(25))
	require.NoError(t, err)
	require.Equal(t, model.TaskCompleted, done.Status)
	require.Equal(t, 25, *done.ActualMinutes)
	require.NotNil(t, done.CompletedAt)

	_, err = f.svc.Complete(f.member, task.ID, intp(25))
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)
}

func TestCompleteDefaultsToEstimate(t *testing.T) {
	f := setup(t)
	task := f.assignedTask(t, nil, intp(20))

	done, err := f.svc.Complete(f.member2, task.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 20, *done.ActualMinutes)
}

func TestCompleteNeedsMinutes(t *testing.T) {
	f := setup(t)
	task := f.assignedTask(t, &f.member.UserID, nil)

	_, err := f.svc.Complete(f.member, task.ID, nil)
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.Complete(f.member, task.ID, intp(0))
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCompleteErrors(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Complete(f.member, 777, intp(10))
	require.ErrorIs(t, err, apperr.ErrNotFound)

	task := f.assignedTask(t, nil, intp(10))
	_, err = f.svc.Complete(f.outsider, task.ID, nil)
	require.ErrorIs(t, err, apperr.ErrAuthorization)
}

func TestSetStatusGuarded(t *testing.T) {
	f := setup(t)
	task := f.assignedTask(t, &f.member.UserID, intp(20))

	_, err := f.svc.SetStatus(f.admin, task.ID, model.TaskApproved)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = f.svc.SetStatus(f.admin, task.ID, model.TaskCompleted)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = f.svc.Complete(f.member, task.ID, nil)
	require.NoError(t, err)

	_, err = f.svc.SetStatus(f.member, task.ID, model.TaskApproved)
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	pending, err := f.svc.SetStatus(f.admin, task.ID, model.TaskPendingApproval)
	require.NoError(t, err)
	require.Equal(t, model.TaskPendingApproval, pending.Status)

	approved, err := f.svc.SetStatus(f.admin, task.ID, model.TaskApproved)
	require.NoError(t, err)
	require.Equal(t, model.TaskApproved, approved.Status)
	require.Equal(t, f.admin.UserID, *approved.ReviewedBy)

	_, err = f.svc.SetStatus(f.admin, task.ID, model.TaskRejected)
	require.ErrorIs(t, err, apperr.ErrInvalidTransition)

	_, err = f.svc.SetStatus(f.admin, task.ID, model.TaskStatus("done"))
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestRejectedTaskCanBeReworked(t *testing.T) {
	f := setup(t)
	task := f.assignedTask(t, &f.member.UserID, intp(20))

	_, err := f.svc.Complete(f.member, task.ID, nil)
	require.NoError(t, err)
	_, err = f.svc.SetStatus(f.admin, task.ID, model.TaskRejected)
	require.NoError(t, err)

	reopened, err := f.svc.SetStatus(f.admin, task.ID, model.TaskAssigned)
	require.NoError(t, err)
	require.Equal(t, model.TaskAssigned, reopened.Status)
	require.Nil(t, reopened.ActualMinutes)
	require.Nil(t, reopened.CompletedAt)
	require.Nil(t, reopened.ReviewedBy)

	again, err := f.svc.Complete(f.member, task.ID, intp(30))
	require.NoError(t, err)
	require.Equal(t, 30, *again.ActualMinutes)
}

func TestLists(t *testing.T) {
	f := setup(t)
	first := f.assignedTask(t, &f.member.UserID, nil)
	f.assignedTask(t, &f.member2.UserID, nil)
	third := f.assignedTask(t, &f.member.UserID, nil)

	all, err := f.svc.ListForHousehold(f.member)
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := f.svc.ListForUser(f.member.UserID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, third.ID, mine[0].ID)
	require.Equal(t, first.ID, mine[1].ID)

	theirs, err := f.svc.ListForHousehold(f.outsider)
	require.NoError(t, err)
	require.Empty(t, theirs)
}

func (f *fixture) template(t *testing.T) *model.TaskTemplate {
	t.Helper()
	tmpl, err := f.svc.CreateTemplate(f.admin, TemplateInput{Title: "Water plants", Description: "All of them", EstimatedMinutes: 10})
	require.NoError(t, err)
	return tmpl
}

func TestCreateFromTemplateNotifiesOnce(t *testing.T) {
	f := setup(t)
	tmpl := f.template(t)

	task, err := f.svc.CreateFromTemplate(f.admin, tmpl.ID, &f.member.UserID)
	require.NoError(t, err)
	require.True(t, task.IsFromTemplate)
	require.Equal(t, tmpl.ID, *task.TemplateID)
	require.Equal(t, "Water plants", task.Title)
	require.Equal(t, 10, *task.EstimatedMinutes)

	require.Len(t, f.notifier.calls, 1)
	call := f.notifier.calls[0]
	require.Equal(t, f.member.UserID, call.userID)
	require.Equal(t, model.NotifTypeTaskAssigned, call.typ)
	require.Equal(t, task.ID, *call.relatedID)
}

func TestCreateFromTemplateDeadline(t *testing.T) {
	f := setup(t)
	f.svc.now = func() time.Time { return time.Date(2025, 1, 31, 15, 0, 0, 0, time.UTC) }

	monthly, err := f.svc.CreateTemplate(f.admin, TemplateInput{Title: "Clean gutters", EstimatedMinutes: 60, Recurrence: "monthly"})
	require.NoError(t, err)
	task, err := f.svc.CreateFromTemplate(f.admin, monthly.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, task.Deadline)
	require.True(t, task.Deadline.Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)), "deadline = %v", task.Deadline)

	once, err := f.svc.CreateTemplate(f.admin, TemplateInput{Title: "Fix fence", EstimatedMinutes: 90, Recurrence: "none"})
	require.NoError(t, err)
	task, err = f.svc.CreateFromTemplate(f.admin, once.ID, nil)
	require.NoError(t, err)
	require.Nil(t, task.Deadline)
}

func TestCreateFromTemplateWithoutAssignee(t *testing.T) {
	f := setup(t)
	tmpl := f.template(t)

	task, err := f.svc.CreateFromTemplate(f.admin, tmpl.ID, nil)
	require.NoError(t, err)
	require.Nil(t, task.AssignedTo)
	require.Empty(t, f.notifier.calls)
}

func TestCreateFromInactiveTemplate(t *testing.T) {
	f := setup(t)
	tmpl := f.template(t)

	_, err := f.svc.DeactivateTemplate(f.admin, tmpl.ID)
	require.NoError(t, err)

	_, err = f.svc.CreateFromTemplate(f.admin, tmpl.ID, &f.member.UserID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.Empty(t, f.notifier.calls)

	_, err = f.svc.CreateFromTemplate(f.admin, 9999, nil)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateFromTemplateNotifyFailureSwallowed(t *testing.T) {
	f := setup(t)
	tmpl := f.template(t)
	f.notifier.err = errors.New("smtp down")

	task, err := f.svc.CreateFromTemplate(f.admin, tmpl.ID, &f.member.UserID)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.Len(t, f.notifier.calls, 1)

	stored, err := f.tasks.GetByID(task.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreateFromTemplateAuthorization(t *testing.T) {
	f := setup(t)
	tmpl := f.template(t)

	_, err := f.svc.CreateFromTemplate(f.member, tmpl.ID, nil)
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.svc.CreateFromTemplate(f.outsider, tmpl.ID, nil)
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.svc.CreateFromTemplate(f.admin, tmpl.ID, &f.outsider.UserID)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestTemplates(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CreateTemplate(f.member, TemplateInput{Title: "Dust", EstimatedMinutes: 5})
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.svc.CreateTemplate(f.admin, TemplateInput{Title: "Dust", EstimatedMinutes: 0})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CreateTemplate(f.admin, TemplateInput{Title: "Dust", EstimatedMinutes: 5, Priority: "urgent"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.CreateTemplate(f.admin, TemplateInput{Title: "Dust", EstimatedMinutes: 5, Recurrence: "yearly"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	tmpl := f.template(t)
	require.Equal(t, "medium", tmpl.Priority)
	require.Equal(t, "daily", tmpl.Recurrence)
	require.True(t, tmpl.IsActive)

	list, err := f.svc.ListTemplates(f.member)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.svc.DeactivateTemplate(f.member, tmpl.ID)
	require.ErrorIs(t, err, apperr.ErrAuthorization)

	_, err = f.svc.DeactivateTemplate(f.admin, tmpl.ID)
	require.NoError(t, err)

	_, err = f.svc.DeactivateTemplate(f.admin, tmpl.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)

	list, err = f.svc.ListTemplates(f.member)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestEventsPublished(t *testing.T) {
	f := setup(t)
	task := f.assignedTask(t, &f.member.UserID, intp(20))
	_, err := f.svc.Complete(f.member, task.ID, nil)
	require.NoError(t, err)

	var types []string
	for _, m := range f.events.msgs {
		types = append(types, m.Type)
	}
	require.Equal(t, []string{"task_created", "progress_invalidated", "task_completed", "progress_invalidated"}, types)
}
