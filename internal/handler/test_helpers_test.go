package handler

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/config"
	"github.com/iliyamo/room-reservation/internal/repository"
)

const testUserID uint64 = 7

func testConfig() config.Config {
	return config.Config{
		Env:            "test",
		Port:           "0",
		JWTSecret:      "room-reservation-test-secret-0123456789",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     4, // minimum cost keeps hashing fast in tests
	}
}

// newReservationHandler wires a ReservationHandler against a sqlmock
// database. Event publishing stays off so tests never touch a broker.
func newReservationHandler(t *testing.T) (*ReservationHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	h := NewReservationHandler(repository.NewRoomRepo(db), repository.NewReservationRepo(db))
	return h, mock, func() { _ = db.Close() }
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	h := NewAuthHandler(testConfig(), repository.NewUserRepo(db), repository.NewTokenRepo(db))
	return h, mock, func() { _ = db.Close() }
}

// invoke drives a handler directly through an Echo context, bypassing
// routing. userID mimics what the JWT middleware stores; pass 0 to
// leave the context unauthenticated.
func invoke(t *testing.T, fn echo.HandlerFunc, method, target, body string, userID uint64, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", float64(userID)) // JSON-decoded claims arrive as float64
	}
	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}
	if err := fn(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func mustStatus(t *testing.T, rec *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rec.Code != expected {
		t.Fatalf("expected status %d, got %d (body: %s)", expected, rec.Code, rec.Body.String())
	}
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}
