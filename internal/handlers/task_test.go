package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectTaskFetch mocks the task re-fetch with its preloads, which run in
// sorted order: AssignedTo, then Project, then Project.Owner.
func expectTaskFetch(mock sqlmock.Sqlmock, taskID, projectID, assigneeID uint) {
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "priority", "project_id", "assigned_to_id"}).
			AddRow(taskID, "Fix login", "todo", "medium", projectID, assigneeID))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(assigneeID, "alice"))
	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id"}).AddRow(projectID, "Alpha", 42))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(42, "alice"))
}

func TestCreateTask_MissingProject(t *testing.T) {
	setupMockDB(t)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/tasks/", map[string]interface{}{
		"title": "Fix login",
	})
	asUser(ctx, 42, "alice")

	CreateTask(ctx)

	requireStatus(t, w, http.StatusBadRequest)
}

func TestCreateTask_AutoAssignsCaller(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Fix login", "", "todo", "medium", 1, 42, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	expectTaskFetch(mock, 9, 1, 42)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/tasks/", map[string]interface{}{
		"title":   "Fix login",
		"project": 1,
	})
	asUser(ctx, 42, "alice")

	CreateTask(ctx)

	requireStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	assert.Equal(t, float64(42), body["assigned_to"].(map[string]interface{})["id"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTask_ExplicitAssigneeKept(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Fix login", "", "todo", "medium", 1, 7, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectCommit()

	expectTaskFetch(mock, 9, 1, 7)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/tasks/", map[string]interface{}{
		"title":       "Fix login",
		"project":     1,
		"assigned_to": 7,
	})
	asUser(ctx, 42, "alice")

	CreateTask(ctx)

	requireStatus(t, w, http.StatusCreated)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTask_InvalidStatus(t *testing.T) {
	setupMockDB(t)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/tasks/", map[string]interface{}{
		"title":   "Fix login",
		"project": 1,
		"status":  "blocked",
	})
	asUser(ctx, 42, "alice")

	CreateTask(ctx)

	requireStatus(t, w, http.StatusBadRequest)
}

func TestCreateTask_InvalidPriority(t *testing.T) {
	setupMockDB(t)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/tasks/", map[string]interface{}{
		"title":    "Fix login",
		"project":  1,
		"priority": "urgent",
	})
	asUser(ctx, 42, "alice")

	CreateTask(ctx)

	requireStatus(t, w, http.StatusBadRequest)
}

func TestCreateTask_UnknownProject(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/tasks/", map[string]interface{}{
		"title":   "Fix login",
		"project": 999,
	})
	asUser(ctx, 42, "alice")

	CreateTask(ctx)

	requireStatus(t, w, http.StatusBadRequest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_UnknownAssignee(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "priority", "project_id", "assigned_to_id"}).
			AddRow(9, "Fix login", "todo", "medium", 1, 42))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPatch, "/api/tasks/9", map[string]interface{}{
		"assigned_to": 999,
	})
	ctx.Params = append(ctx.Params, gin.Param{Key: "id", Value: "9"})
	asUser(ctx, 42, "alice")

	UpdateTask(ctx)

	requireStatus(t, w, http.StatusBadRequest)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_UnassignOnExplicitNull(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "priority", "project_id", "assigned_to_id"}).
			AddRow(9, "Fix login", "todo", "medium", 1, 42))
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WithArgs(nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Re-fetch: no assignee left, so only project and owner preloads run.
	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "priority", "project_id", "assigned_to_id"}).
			AddRow(9, "Fix login", "todo", "medium", 1, nil))
	mock.ExpectQuery(`SELECT \* FROM "projects"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "owner_id"}).AddRow(1, "Alpha", 42))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(42, "alice"))

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPatch, "/api/tasks/9", map[string]interface{}{
		"assigned_to": nil,
	})
	ctx.Params = append(ctx.Params, gin.Param{Key: "id", Value: "9"})
	asUser(ctx, 42, "alice")

	UpdateTask(ctx)

	requireStatus(t, w, http.StatusOK)
	assert.Nil(t, decodeBody(t, w)["assigned_to"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_AbsentAssigneeUnchanged(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "priority", "project_id", "assigned_to_id"}).
			AddRow(9, "Fix login", "todo", "medium", 1, 7))
	mock.ExpectBegin()
	// Exactly title + updated_at + the id in the WHERE clause; an
	// assigned_to_id column here would be a regression.
	mock.ExpectExec(`UPDATE "tasks" SET`).
		WithArgs("New title", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expectTaskFetch(mock, 9, 1, 7)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPatch, "/api/tasks/9", map[string]interface{}{
		"title": "New title",
	})
	ctx.Params = append(ctx.Params, gin.Param{Key: "id", Value: "9"})
	asUser(ctx, 42, "alice")

	UpdateTask(ctx)

	requireStatus(t, w, http.StatusOK)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateTask_InvalidAssignedTo(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "priority", "project_id", "assigned_to_id"}).
			AddRow(9, "Fix login", "todo", "medium", 1, 7))

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPatch, "/api/tasks/9", map[string]interface{}{
		"assigned_to": "bob",
	})
	ctx.Params = append(ctx.Params, gin.Param{Key: "id", Value: "9"})
	asUser(ctx, 42, "alice")

	UpdateTask(ctx)

	requireStatus(t, w, http.StatusBadRequest)
}

func TestListTasks_ProjectFilter(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "tasks" WHERE project_id = \$1`).
		WithArgs("1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "project_id"}))

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodGet, "/api/tasks/?project_id=1", nil)
	asUser(ctx, 42, "alice")

	ListTasks(ctx)

	requireStatus(t, w, http.StatusOK)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListTasks_NoFilter(t *testing.T) {
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "project_id"}))

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodGet, "/api/tasks/", nil)
	asUser(ctx, 42, "alice")

	ListTasks(ctx)

	requireStatus(t, w, http.StatusOK)
	assert.JSONEq(t, "[]", w.Body.String())
}
