package handler

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/room-reservation/internal/utils"
)

func TestRegisterSuccess(t *testing.T) {
	h, mock, cleanup := newAuthHandler(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("Ana García", "ana@rooms.test", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(12, 1))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(int64(12), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"name":"Ana García","email":"Ana@Rooms.Test","password":"password123"}`
	rec := invoke(t, h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	mustStatus(t, rec, http.StatusCreated)

	var out struct {
		User struct {
			ID    uint64 `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
		Access  struct{ Token string } `json:"access"`
		Refresh struct{ Token string } `json:"refresh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if out.User.ID != 12 || out.User.Email != "ana@rooms.test" {
		t.Fatalf("unexpected user: %+v", out.User)
	}
	if out.Access.Token == "" || out.Refresh.Token == "" {
		t.Fatal("expected both tokens in response")
	}
	expectationsMet(t, mock)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock, cleanup := newAuthHandler(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs("Ana García", "ana@rooms.test", sqlmock.AnyArg()).
		WillReturnError(fmt.Errorf("Error 1062: Duplicate entry 'ana@rooms.test' for key 'users.email'"))

	body := `{"name":"Ana García","email":"ana@rooms.test","password":"password123"}`
	rec := invoke(t, h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	mustStatus(t, rec, http.StatusConflict)
	if b := rec.Body.String(); !jsonErrorIs(b, "email already exists") {
		t.Fatalf("unexpected body: %s", b)
	}
	expectationsMet(t, mock)
}

func TestRegisterValidationOrder(t *testing.T) {
	h, _, cleanup := newAuthHandler(t)
	defer cleanup()

	// Name and email are both invalid; name is declared first.
	body := `{"name":"A","email":"not-an-email","password":"password123"}`
	rec := invoke(t, h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	mustStatus(t, rec, http.StatusBadRequest)
	if b := rec.Body.String(); !jsonErrorIs(b, "name must be at least 2 characters") {
		t.Fatalf("unexpected body: %s", b)
	}

	body = `{"name":"Ana","email":"not-an-email","password":"password123"}`
	rec = invoke(t, h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	mustStatus(t, rec, http.StatusBadRequest)
	if b := rec.Body.String(); !jsonErrorIs(b, "invalid email address") {
		t.Fatalf("unexpected body: %s", b)
	}

	body = `{"name":"Ana","email":"ana@rooms.test","password":"short"}`
	rec = invoke(t, h.Register, http.MethodPost, "/v1/auth/register", body, 0)
	mustStatus(t, rec, http.StatusBadRequest)
	if b := rec.Body.String(); !jsonErrorIs(b, "password must be at least 8 characters") {
		t.Fatalf("unexpected body: %s", b)
	}
}

func userRow(t *testing.T, id int64, email, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := utils.HashPassword(password, 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "created_at", "updated_at"}).
		AddRow(id, "Ana García", email, hash, now, now)
}

func TestLoginSuccess(t *testing.T) {
	h, mock, cleanup := newAuthHandler(t)
	defer cleanup()

	mock.ExpectQuery(`FROM users WHERE email=`).
		WithArgs("ana@rooms.test").
		WillReturnRows(userRow(t, 12, "ana@rooms.test", "password123"))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(int64(12), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	body := `{"email":"ana@rooms.test","password":"password123"}`
	rec := invoke(t, h.Login, http.MethodPost, "/v1/auth/login", body, 0)
	mustStatus(t, rec, http.StatusOK)
	expectationsMet(t, mock)
}

// Wrong password and unknown email must be indistinguishable.
func TestLoginInvalidCredentials(t *testing.T) {
	h, mock, cleanup := newAuthHandler(t)
	defer cleanup()

	mock.ExpectQuery(`FROM users WHERE email=`).
		WithArgs("ana@rooms.test").
		WillReturnRows(userRow(t, 12, "ana@rooms.test", "password123"))

	body := `{"email":"ana@rooms.test","password":"wrong-password"}`
	rec := invoke(t, h.Login, http.MethodPost, "/v1/auth/login", body, 0)
	mustStatus(t, rec, http.StatusUnauthorized)
	wrongPassBody := rec.Body.String()

	mock.ExpectQuery(`FROM users WHERE email=`).
		WithArgs("nobody@rooms.test").
		WillReturnError(sql.ErrNoRows)

	body = `{"email":"nobody@rooms.test","password":"password123"}`
	rec = invoke(t, h.Login, http.MethodPost, "/v1/auth/login", body, 0)
	mustStatus(t, rec, http.StatusUnauthorized)
	if rec.Body.String() != wrongPassBody {
		t.Fatalf("wrong-password and unknown-email responses differ: %q vs %q", rec.Body.String(), wrongPassBody)
	}
	expectationsMet(t, mock)
}

func TestRefreshRotatesToken(t *testing.T) {
	h, mock, cleanup := newAuthHandler(t)
	defer cleanup()

	raw := "0123456789abcdef0123456789abcdef"
	hash := utils.HashRefreshRaw(raw)

	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=`).
		WithArgs(hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(int64(12), time.Now().UTC().Add(24*time.Hour), nil))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=NOW\(\) WHERE token_hash=`).
		WithArgs(hash).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM users WHERE id=`).
		WithArgs(int64(12)).
		WillReturnRows(userRow(t, 12, "ana@rooms.test", "password123"))
	mock.ExpectExec(`INSERT INTO refresh_tokens`).
		WithArgs(int64(12), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))

	body := fmt.Sprintf(`{"refresh_token":"%s"}`, raw)
	rec := invoke(t, h.Refresh, http.MethodPost, "/v1/auth/refresh", body, 0)
	mustStatus(t, rec, http.StatusOK)

	var out struct {
		Refresh struct{ Token string } `json:"refresh"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if out.Refresh.Token == raw {
		t.Fatal("refresh token was not rotated")
	}
	expectationsMet(t, mock)
}

func TestRefreshExpiredToken(t *testing.T) {
	h, mock, cleanup := newAuthHandler(t)
	defer cleanup()

	raw := "feedfacefeedfacefeedfacefeedface"
	mock.ExpectQuery(`FROM refresh_tokens WHERE token_hash=`).
		WithArgs(utils.HashRefreshRaw(raw)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
			AddRow(int64(12), time.Now().UTC().Add(-time.Hour), nil))

	body := fmt.Sprintf(`{"refresh_token":"%s"}`, raw)
	rec := invoke(t, h.Refresh, http.MethodPost, "/v1/auth/refresh", body, 0)
	mustStatus(t, rec, http.StatusUnauthorized)
	expectationsMet(t, mock)
}

func TestLogout(t *testing.T) {
	h, mock, cleanup := newAuthHandler(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at=NOW\(\)`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec := invoke(t, h.Logout, http.MethodPost, "/v1/auth/logout", `{"refresh_token":"whatever"}`, 0)
	mustStatus(t, rec, http.StatusNoContent)
	expectationsMet(t, mock)
}

func TestMe(t *testing.T) {
	h, mock, cleanup := newAuthHandler(t)
	defer cleanup()

	mock.ExpectQuery(`FROM users WHERE id=`).
		WithArgs(int64(testUserID)).
		WillReturnRows(userRow(t, int64(testUserID), "ana@rooms.test", "password123"))

	rec := invoke(t, h.Me, http.MethodGet, "/v1/me", "", testUserID)
	mustStatus(t, rec, http.StatusOK)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if out["email"] != "ana@rooms.test" {
		t.Fatalf("unexpected body: %v", out)
	}
	expectationsMet(t, mock)
}
