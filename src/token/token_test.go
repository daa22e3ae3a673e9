package token

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"campusmap/src/apperr"
	"campusmap/src/logger"
)

func newIssuer(t *testing.T) *Issuer {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return NewIssuer([]byte("signing-key"), map[string]string{"operator": string(hash)}, logger.Discard())
}

func router(is *Issuer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/get_token", is.GetToken)
	r.GET("/protected", is.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(UserKey))
	})
	return r
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperr.Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	if body.Error == "" {
		t.Fatalf("error body without message: %q", w.Body.String())
	}
	return body.Kind
}

func TestGetTokenAndMiddleware(t *testing.T) {
	is := newIssuer(t)
	r := router(is)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/get_token", strings.NewReader(`{"username":"operator","password":"s3cret"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get_token status %d: %s", w.Code, w.Body.String())
	}

	tok, err := is.Sign("operator")
	if err != nil {
		t.Fatal(err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "operator" {
		t.Fatalf("protected: %d %q", w.Code, w.Body.String())
	}
}

func TestGetTokenWrongPassword(t *testing.T) {
	r := router(newIssuer(t))
	for _, body := range []string{
		`{"username":"operator","password":"nope"}`,
		`{"username":"someone","password":"s3cret"}`,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/get_token", strings.NewReader(body)))
		if w.Code != http.StatusUnauthorized || errorKind(t, w) != "unauthorized" {
			t.Errorf("%s: expected 401 unauthorized, got %d %s", body, w.Code, w.Body.String())
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/get_token", strings.NewReader(`{`)))
	if w.Code != http.StatusBadRequest || errorKind(t, w) != "validation" {
		t.Errorf("malformed body: expected 400 validation, got %d %s", w.Code, w.Body.String())
	}
}

func TestMiddlewareRejects(t *testing.T) {
	is := newIssuer(t)
	r := router(is)

	expired := newIssuer(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _ := expired.Sign("operator")

	other := NewIssuer([]byte("other-key"), nil, logger.Discard())
	forged, _ := other.Sign("operator")

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer abc.def.ghi",
		"expired": "Bearer " + old,
		"forged":  "Bearer " + forged,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		if w.Code != http.StatusUnauthorized || errorKind(t, w) != apperr.KindUnauthorized.String() {
			t.Errorf("%s: expected 401 unauthorized, got %d %s", name, w.Code, w.Body.String())
		}
	}
}
