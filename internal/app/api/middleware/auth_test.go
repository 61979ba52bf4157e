package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/response"
	"github.com/fatflowers/financeplus/pkg/types"
)

const (
	testSecret = "test-secret"
	testIssuer = "financeplus"
)

type userMap map[string]*models.User

func (m userMap) FindByID(_ context.Context, id string) (*models.User, error) {
	if id == "broken" {
		return nil, errors.New("connection refused")
	}
	u, ok := m[id]
	if !ok {
		return nil, subscription.ErrNotFound
	}
	return u, nil
}

var testUsers = userMap{
	"u1":    {ID: "u1", Role: types.RoleUser, IsActive: true},
	"admin": {ID: "admin", Role: types.RoleAdmin, IsActive: true},
	"gone":  {ID: "gone", Role: types.RoleUser, IsActive: false},
}

func sign(t *testing.T, claims Claims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func bearer(t *testing.T, sub string, ttl time.Duration) string {
	return "Bearer " + sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}}, jwt.SigningMethodHS256, []byte(testSecret))
}

func newAuthRouter(mws ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{Authenticate(NewTokenVerifier(testSecret, testIssuer), testUsers)}, mws...)
	chain = append(chain, func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, response.OKT(u.ID))
	})
	r.GET("/", chain...)
	return r
}

func do(r http.Handler, auth string) (*httptest.ResponseRecorder, response.APIResponse[any]) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body response.APIResponse[any]
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return w, body
}

func TestAuthenticate(t *testing.T) {
	r := newAuthRouter()
	tests := []struct {
		name   string
		auth   string
		status int
		data   any
	}{
		{"missing header", "", http.StatusUnauthorized, "missing bearer token"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "missing bearer token"},
		{"garbage token", "Bearer abc", http.StatusUnauthorized, "invalid token"},
		{"expired", bearer(t, "u1", -time.Minute), http.StatusUnauthorized, "token expired"},
		{"unknown user", bearer(t, "nobody", time.Hour), http.StatusUnauthorized, "invalid token"},
		{"inactive user", bearer(t, "gone", time.Hour), http.StatusUnauthorized, "user is inactive"},
		{"lookup failure", bearer(t, "broken", time.Hour), http.StatusServiceUnavailable, nil},
		{"valid", bearer(t, "u1", time.Hour), http.StatusOK, "u1"},
		{"lowercase scheme", "bearer " + bearer(t, "u1", time.Hour)[7:], http.StatusOK, "u1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(r, tt.auth)
			require.Equal(t, tt.status, w.Code)
			require.Equal(t, tt.data, body.Data)
		})
	}
}

func TestTokenVerifier(t *testing.T) {
	v := NewTokenVerifier(testSecret, testIssuer)

	t.Run("legacy userId claim", func(t *testing.T) {
		tok := sign(t, Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{Issuer: testIssuer}}, jwt.SigningMethodHS256, []byte(testSecret))
		claims, err := v.Verify(tok)
		require.NoError(t, err)
		require.Equal(t, "u1", claims.subject())
	})
	t.Run("wrong issuer", func(t *testing.T) {
		tok := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: "other"}}, jwt.SigningMethodHS256, []byte(testSecret))
		_, err := v.Verify(tok)
		require.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
	})
	t.Run("wrong secret", func(t *testing.T) {
		tok := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: testIssuer}}, jwt.SigningMethodHS256, []byte("other"))
		_, err := v.Verify(tok)
		require.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})
	t.Run("other algorithm", func(t *testing.T) {
		tok := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1", Issuer: testIssuer}}, jwt.SigningMethodHS512, []byte(testSecret))
		_, err := v.Verify(tok)
		require.Error(t, err)
	})
	t.Run("no subject", func(t *testing.T) {
		tok := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: testIssuer}}, jwt.SigningMethodHS256, []byte(testSecret))
		_, err := v.Verify(tok)
		require.Error(t, err)
	})
	t.Run("unconfigured secret", func(t *testing.T) {
		tok := sign(t, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "u1"}}, jwt.SigningMethodHS256, []byte(testSecret))
		_, err := NewTokenVerifier("", "").Verify(tok)
		require.Error(t, err)
	})
}

func TestRequireRole(t *testing.T) {
	r := newAuthRouter(RequireRole(types.RoleAdmin, types.RoleRoot))

	w, body := do(r, bearer(t, "u1", time.Hour))
	require.Equal(t, http.StatusForbidden, w.Code)
	require.EqualValues(t, response.APIResponseCodeForbidden, body.Code)

	w, _ = do(r, bearer(t, "admin", time.Hour))
	require.Equal(t, http.StatusOK, w.Code)
}
