package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/room-reservation/internal/utils"
)

const testSecret = "room-reservation-test-secret-0123456789"

// runJWT sends a request with the given Authorization header through
// JWTAuth and reports the response plus whatever user_id reached the
// inner handler.
func runJWT(t *testing.T, authHeader string) (*httptest.ResponseRecorder, interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var captured interface{}
	handler := JWTAuth(testSecret)(func(c echo.Context) error {
		captured = c.Get("user_id")
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	return rec, captured
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 42, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, captured := runJWT(t, "Bearer "+at.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (body: %s)", rec.Code, rec.Body.String())
	}
	// JSON numeric claims decode as float64.
	if sub, ok := captured.(float64); !ok || uint64(sub) != 42 {
		t.Fatalf("unexpected user_id in context: %v", captured)
	}
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	rec, _ := runJWT(t, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("a-different-secret", 42, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, _ := runJWT(t, "Bearer "+at.Token)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuthRejectsMalformedToken(t *testing.T) {
	rec, _ := runJWT(t, "Bearer not.a.jwt")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
