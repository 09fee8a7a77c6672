package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskforge-dev/taskforge/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

func initJWT(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	require.NoError(t, auth.InitJWTSecret())
}

func TestRegisterUser_CreatesUserAndIssuesTokens(t *testing.T) {
	initJWT(t)
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1 OR email = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/users/register/", map[string]interface{}{
		"username": "alice",
		"email":    "alice@example.com",
		"password": "supersecret",
	})

	RegisterUser(ctx)

	requireStatus(t, w, http.StatusCreated)

	body := decodeBody(t, w)
	user := body["user"].(map[string]interface{})
	tokens := body["tokens"].(map[string]interface{})

	assert.Equal(t, "alice", user["username"])
	assert.NotEmpty(t, tokens["access"])
	assert.NotEmpty(t, tokens["refresh"])

	// The returned access token must authenticate immediately.
	claims, err := auth.VerifyJWT(tokens["access"].(string), auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, float64(1), claims["user_id"])

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUser_DuplicateUsername(t *testing.T) {
	initJWT(t)
	mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1 OR email = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "alice"))

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/users/register/", map[string]interface{}{
		"username": "alice",
		"email":    "other@example.com",
		"password": "supersecret",
	})

	RegisterUser(ctx)

	requireStatus(t, w, http.StatusConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterUser_MissingFields(t *testing.T) {
	setupMockDB(t)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/users/register/", map[string]interface{}{
		"username": "alice",
	})

	RegisterUser(ctx)

	requireStatus(t, w, http.StatusBadRequest)
}

func TestLoginUser_UniformFailureShape(t *testing.T) {
	initJWT(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	// Wrong password for an existing user.
	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash"}).
			AddRow(1, "alice", string(hash)))

	w1 := httptest.NewRecorder()
	ctx := newTestContext(t, w1, http.MethodPost, "/api/users/login/", map[string]interface{}{
		"username": "alice",
		"password": "wrong password",
	})
	LoginUser(ctx)

	// Unknown username.
	mock = setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w2 := httptest.NewRecorder()
	ctx = newTestContext(t, w2, http.MethodPost, "/api/users/login/", map[string]interface{}{
		"username": "nobody",
		"password": "wrong password",
	})
	LoginUser(ctx)

	requireStatus(t, w1, http.StatusUnauthorized)
	requireStatus(t, w2, http.StatusUnauthorized)
	assert.JSONEq(t, w1.Body.String(), w2.Body.String())
}

func TestLoginUser_Success(t *testing.T) {
	initJWT(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash"}).
			AddRow(7, "alice", "alice@example.com", string(hash)))

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/users/login/", map[string]interface{}{
		"username": "alice",
		"password": "correct horse",
	})
	LoginUser(ctx)

	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	tokens := body["tokens"].(map[string]interface{})
	assert.NotEmpty(t, tokens["access"])
	assert.NotEmpty(t, tokens["refresh"])
}

func TestRefreshToken_IssuesNewAccessToken(t *testing.T) {
	initJWT(t)

	pair, err := auth.GenerateTokenPair(7, "alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/token/refresh/", map[string]interface{}{
		"refresh": pair.Refresh,
	})
	RefreshToken(ctx)

	requireStatus(t, w, http.StatusOK)

	body := decodeBody(t, w)
	claims, err := auth.VerifyJWT(body["access"].(string), auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, float64(7), claims["user_id"])
}

func TestRefreshToken_RejectsAccessToken(t *testing.T) {
	initJWT(t)

	pair, err := auth.GenerateTokenPair(7, "alice")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/token/refresh/", map[string]interface{}{
		"refresh": pair.Access,
	})
	RefreshToken(ctx)

	requireStatus(t, w, http.StatusUnauthorized)
}

func TestRefreshToken_RejectsGarbage(t *testing.T) {
	initJWT(t)

	w := httptest.NewRecorder()
	ctx := newTestContext(t, w, http.MethodPost, "/api/token/refresh/", map[string]interface{}{
		"refresh": "not.a.token",
	})
	RefreshToken(ctx)

	requireStatus(t, w, http.StatusUnauthorized)
}
