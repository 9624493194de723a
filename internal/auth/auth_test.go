package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catering/internal/config"
	"catering/internal/logger"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	return NewAuthenticator(config.AuthConfig{
		AdminUsername:     "admin",
		AdminPasswordHash: string(hash),
		JWTSecret:         "test-secret",
		TokenTTL:          time.Hour,
	}, logger.Discard())
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pa55")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pa55")))

	_, err = HashPassword("")
	assert.Error(t, err)
}

func TestLoginAndVerify(t *testing.T) {
	a := newTestAuthenticator(t)

	token, expires, err := a.Login("admin", "s3cret")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	subject, err := a.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)

	_, _, err = a.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = a.Login("root", "s3cret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	a := newTestAuthenticator(t)

	expired := newTestAuthenticator(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("admin")
	require.NoError(t, err)

	other := newTestAuthenticator(t)
	other.secret = []byte("other-secret")
	forged, _, err := other.Issue("admin")
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.StandardClaims{
		Subject:   "admin",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired": old,
		"forged":  forged,
		"none":    none,
		"garbage": "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := a.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func newRouter(a *Authenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/login", a.LoginHandler)
	r.GET("/admin/ping", a.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": Subject(c)})
	})
	return r
}

func TestLoginHandler(t *testing.T) {
	r := newRouter(newTestAuthenticator(t))

	body, _ := json.Marshal(gin.H{"username": "admin", "password": "s3cret"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp["token"])
	assert.NotEmpty(t, resp["expires_at"])

	body, _ = json.Marshal(gin.H{"username": "admin", "password": "nope"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte(`{}`))))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	a := newTestAuthenticator(t)
	r := newRouter(a)
	token, _, err := a.Issue("admin")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"subject":"admin"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer nope")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdminDisabled(t *testing.T) {
	a := NewAuthenticator(config.AuthConfig{AdminUsername: "admin", TokenTTL: time.Hour}, logger.Discard())
	assert.False(t, a.Enabled())

	w := httptest.NewRecorder()
	newRouter(a).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	_, _, err := a.Login("admin", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
