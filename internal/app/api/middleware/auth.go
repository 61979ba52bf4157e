package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/lo"

	"github.com/fatflowers/financeplus/internal/app/service/subscription"
	"github.com/fatflowers/financeplus/internal/models"
	"github.com/fatflowers/financeplus/pkg/logctx"
	"github.com/fatflowers/financeplus/pkg/response"
	"github.com/fatflowers/financeplus/pkg/types"
)

// UserKey is the gin context key of the authenticated *models.User.
const UserKey = "user"

// Claims are the bearer token claims. The subject is the user id; tokens
// issued by older clients carry it in userId instead.
type Claims struct {
	UserID string `json:"userId,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) subject() string {
	if c.Subject != "" {
		return c.Subject
	}
	return c.UserID
}

// UserFinder loads the account behind a token.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type TokenVerifier struct {
	secret []byte
	issuer string
}

func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify checks the HMAC signature, expiry and issuer of tok.
func (v *TokenVerifier) Verify(tok string) (*Claims, error) {
	if len(v.secret) == 0 {
		return nil, errors.New("token secret is not configured")
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !tkn.Valid || claims.subject() == "" {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

func abort(c *gin.Context, status int, code response.APIResponseCode, data any) {
	c.AbortWithStatusJSON(status, response.ErrorT(code, data))
}

// Authenticate requires a valid bearer token of an active user and stores
// the user under UserKey.
func Authenticate(v *TokenVerifier, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		hdr := c.GetHeader("Authorization")
		if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
			abort(c, http.StatusUnauthorized, response.APIResponseCodeUnauthorized, "missing bearer token")
			return
		}
		claims, err := v.Verify(strings.TrimSpace(hdr[7:]))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				msg = "token expired"
			}
			abort(c, http.StatusUnauthorized, response.APIResponseCodeUnauthorized, msg)
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.subject())
		switch {
		case errors.Is(err, subscription.ErrNotFound):
			abort(c, http.StatusUnauthorized, response.APIResponseCodeUnauthorized, "invalid token")
			return
		case err != nil:
			logctx.FromGin(c, nil).Errorw("failed to load user", "err", err)
			abort(c, http.StatusServiceUnavailable, response.APIResponseCodeUnavailable, nil)
			return
		case !user.IsActive:
			abort(c, http.StatusUnauthorized, response.APIResponseCodeUnauthorized, "user is inactive")
			return
		}

		c.Set(UserKey, user)
		c.Request = c.Request.WithContext(logctx.WithUserID(c.Request.Context(), user.ID))
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticate.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}

// RequireRole lets only users holding one of roles through.
func RequireRole(roles ...types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			abort(c, http.StatusUnauthorized, response.APIResponseCodeUnauthorized, nil)
			return
		}
		if !lo.Contains(roles, user.Role) {
			abort(c, http.StatusForbidden, response.APIResponseCodeForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}
