package handler

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ecocoleta/ecocoleta-backend/internal/config"
	"github.com/ecocoleta/ecocoleta-backend/internal/repository"
	"github.com/ecocoleta/ecocoleta-backend/internal/utils"
)

const testSecret = "handler-test-secret"

func newAuthEnv(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:      testSecret,
		AccessTTLMin:   60,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db)), mock, db
}

func doJSON(h echo.HandlerFunc, method, path, body string) (*httptest.ResponseRecorder, error) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, h(e.NewContext(req, rec))
}

func userRow(passwordHash string, active bool, refreshHash any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "is_active", "refresh_token_hash", "created_at",
	}).AddRow("u1", "Jane", "jane@x.com", passwordHash, "PRODUTOR", active, refreshHash, time.Now())
}

func TestSignupCreatesInactiveUser(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WillReturnRows(userRow("$2a$04$hash", false, nil))

	rec, err := doJSON(h.Signup, http.MethodPost, "/v1/auth/signup",
		`{"name":"Jane","email":"jane@x.com","password":"Str0ng!pw","role":"PRODUTOR"}`)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "u1", resp["id"])
	assert.Equal(t, "PRODUTOR", resp["role"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSignupDuplicateEmail(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	// Duplicate-key error text as the MySQL driver produces it.
	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errDuplicate{})

	rec, err := doJSON(h.Signup, http.MethodPost, "/v1/auth/signup",
		`{"name":"Jane","email":"jane@x.com","password":"other","role":"ADMIN"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type errDuplicate struct{}

func (errDuplicate) Error() string { return "Error 1062: Duplicate entry 'jane@x.com'" }

func TestSignupRejectsUnknownRole(t *testing.T) {
	h, _, db := newAuthEnv(t)
	defer db.Close()

	rec, err := doJSON(h.Signup, http.MethodPost, "/v1/auth/signup",
		`{"name":"Jane","email":"jane@x.com","password":"pw","role":"WIZARD"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPasswordNoLockout(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	stored, err := utils.HashPassword("correct-pw", bcrypt.MinCost)
	require.NoError(t, err)

	// Three failed attempts in a row all answer 401; there is no
	// lockout or rate limiting in this flow.
	for i := 0; i < 3; i++ {
		mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
			WillReturnRows(userRow(stored, false, nil))

		rec, err := doJSON(h.Login, http.MethodPost, "/v1/auth/login",
			`{"email":"jane@x.com","password":"wrong-pw"}`)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownEmailSameMessage(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WillReturnError(sql.ErrNoRows)

	rec, err := doJSON(h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"ghost@x.com","password":"whatever"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestLoginIssuesVerifiablePair(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	stored, err := utils.HashPassword("Str0ng!pw", bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WillReturnRows(userRow(stored, false, nil))
	mock.ExpectExec("UPDATE users SET is_active=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET refresh_token_hash=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := doJSON(h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"jane@x.com","password":"Str0ng!pw"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenPairResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	sub, err := utils.VerifyAccessToken(testSecret, resp.Access.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)

	sub, err = utils.VerifyRefreshToken(testSecret, resp.Refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)

	// The pair is not interchangeable.
	_, err = utils.VerifyRefreshToken(testSecret, resp.Access.Token)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginHashStoreFailureLeavesNoPartialState(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	stored, err := utils.HashPassword("Str0ng!pw", bcrypt.MinCost)
	require.NoError(t, err)

	// Activation lands first; the hash store fails afterwards, so the 500
	// response is not paired with a fresh hash the client never received.
	mock.ExpectQuery("SELECT .+ FROM users WHERE email=").
		WillReturnRows(userRow(stored, false, nil))
	mock.ExpectExec("UPDATE users SET is_active=").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET refresh_token_hash=").
		WillReturnError(errors.New("connection reset"))

	rec, err := doJSON(h.Login, http.MethodPost, "/v1/auth/login",
		`{"email":"jane@x.com","password":"Str0ng!pw"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRotatesAndRejectsReplay(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	oldRefresh, err := utils.NewRefreshToken(testSecret, "u1", 7)
	require.NoError(t, err)
	oldHash, err := utils.HashRefreshRaw(oldRefresh.Token, bcrypt.MinCost)
	require.NoError(t, err)

	// First exchange succeeds and CAS-rotates the stored hash.
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WillReturnRows(userRow("$2a$04$pw", true, oldHash))
	mock.ExpectExec("UPDATE users SET refresh_token_hash=").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := doJSON(h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+oldRefresh.Token+`"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp tokenPairResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Refresh.Token)
	assert.NotEqual(t, oldRefresh.Token, resp.Refresh.Token)

	// Replay of the superseded token: the stored hash now belongs to the
	// new token, so the comparison fails even though the JWT itself is
	// still well formed and unexpired.
	newHash, err := utils.HashRefreshRaw(resp.Refresh.Token, bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WillReturnRows(userRow("$2a$04$pw", true, newHash))

	rec, err = doJSON(h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+oldRefresh.Token+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshLosingRaceIsRejected(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	refresh, err := utils.NewRefreshToken(testSecret, "u1", 7)
	require.NoError(t, err)
	hash, err := utils.HashRefreshRaw(refresh.Token, bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WillReturnRows(userRow("$2a$04$pw", true, hash))
	// Zero rows: a concurrent refresh rotated the hash between our read
	// and our update.
	mock.ExpectExec("UPDATE users SET refresh_token_hash=").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec, err := doJSON(h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+refresh.Token+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshInactiveUser(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	refresh, err := utils.NewRefreshToken(testSecret, "u1", 7)
	require.NoError(t, err)
	hash, err := utils.HashRefreshRaw(refresh.Token, bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WillReturnRows(userRow("$2a$04$pw", false, hash))

	rec, err := doJSON(h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+refresh.Token+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "inactive user")
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	h, _, db := newAuthEnv(t)
	defer db.Close()

	access, err := utils.NewAccessToken(testSecret, "u1", 60)
	require.NoError(t, err)

	rec, err := doJSON(h.Refresh, http.MethodPost, "/v1/auth/refresh",
		`{"refresh_token":"`+access.Token+`"}`)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutDeactivatesAndRevokes(t *testing.T) {
	h, mock, db := newAuthEnv(t)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET is_active=").
		WithArgs(false, "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users SET refresh_token_hash=NULL").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/logout", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", "u1") // normally set by JWTAuth

	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
