package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawssion/shelter-adoption/internal/config"
	"github.com/pawssion/shelter-adoption/internal/model"
	"github.com/pawssion/shelter-adoption/internal/utils"
)

const testSecret = "middleware-test-secret"

func doRequest(h echo.HandlerFunc, mw echo.MiddlewareFunc, authorize func(*http.Request)) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorize != nil {
		authorize(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = mw(h)(c)
	return rec
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"user_id": c.Get("user_id"), "role": c.Get("role")})
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec := doRequest(okHandler, JWTAuth(testSecret), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthGarbageToken(t *testing.T) {
	rec := doRequest(okHandler, JWTAuth(testSecret), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer not-a-jwt")
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	at, err := utils.NewAccessToken("some-other-secret", 7, model.RoleUser, 5)
	require.NoError(t, err)
	rec := doRequest(okHandler, JWTAuth(testSecret), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+at.Token)
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthInjectsClaims(t *testing.T) {
	at, err := utils.NewAccessToken(testSecret, 7, model.RoleShelter, 5)
	require.NoError(t, err)
	rec := doRequest(okHandler, JWTAuth(testSecret), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+at.Token)
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"SHELTER"`)
}

func TestRequireRoleAllowsListedRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", model.RoleAdmin)

	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", model.RoleUser)

	_ = RequireRole(model.RoleAdmin)(okHandler)(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = RequireRole(model.RoleUser, model.RoleAdmin)(okHandler)(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func rateCtx(t *testing.T) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/my-requests", nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestRateKeyUsesPrincipalAfterJWT(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "adopt:rl", KeyStrategy: "user"}
	c := rateCtx(t)

	// Claims as JWTAuth leaves them on the context.
	c.Set("user_id", float64(7))
	c.Set("role", model.RoleShelter)

	assert.Equal(t, "adopt:rl:user:SHELTER-7", buildRateKey(cfg, c))
}

func TestRateKeySeparatesRolesWithSameID(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "adopt:rl", KeyStrategy: "user"}

	c := rateCtx(t)
	c.Set("user_id", float64(7))
	c.Set("role", model.RoleUser)
	userKey := buildRateKey(cfg, c)

	c2 := rateCtx(t)
	c2.Set("user_id", float64(7))
	c2.Set("role", model.RoleShelter)

	assert.NotEqual(t, userKey, buildRateKey(cfg, c2))
}

func TestRateKeyFallsBackToAnonWithoutClaims(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "adopt:rl", KeyStrategy: "user"}
	assert.Equal(t, "adopt:rl:user:anon", buildRateKey(cfg, rateCtx(t)))
}

func TestCaptureWriterCountsFullSizeWhileBuffering(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

	n, err := cw.Write([]byte("0123456789ABCDEF"))
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	// The client saw everything, the buffer holds only the first limit
	// bytes, and size records the true response length so the cache can
	// refuse to store a truncated body.
	assert.Equal(t, "0123456789ABCDEF", rec.Body.String())
	assert.Equal(t, "0123456789", cw.buf.String())
	assert.EqualValues(t, 16, cw.size)
	assert.Greater(t, cw.size, cw.limit)
}

func TestCaptureWriterUnlimitedKeepsWholeBody(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK}

	_, err := cw.Write([]byte("0123456789ABCDEF"))
	require.NoError(t, err)
	assert.Equal(t, "0123456789ABCDEF", cw.buf.String())
	assert.EqualValues(t, 16, cw.size)
}
