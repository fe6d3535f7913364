package admin

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/difflow/auth"
	"github.com/kbukum/difflow/auth/authctx"
	"github.com/kbukum/difflow/auth/jwt"
)

// Claims is the admin surface's own JWT payload: just enough to identify
// who issued a manual /step and let a future authorization layer key off
// Role, without admin needing a generic claims type parameter.
type Claims struct {
	gojwt.RegisteredClaims
	Role string `json:"role"`
}

func newEmptyClaims() *Claims { return &Claims{} }

// newTokenService builds the HS256 service admin mints and validates its
// own tokens with, when JWT auth is enabled.
func newTokenService(cfg *Config) (*jwt.Service[*Claims], error) {
	jcfg := &jwt.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TokenTTL: cfg.JWTTokenTTL}
	return jwt.NewService[*Claims](jcfg, newEmptyClaims)
}

// IssueToken mints a token for the given subject/role, for an operator to
// hand to whatever client needs to call the mutating or introspection
// routes. Returns an error if JWT auth is not enabled on this server.
func (s *Server) IssueToken(subject, role string) (string, error) {
	if s.tokens == nil {
		return "", fmt.Errorf("admin: JWT auth is not enabled")
	}
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.cfg.JWTIssuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.tokens.StandardTTL())),
		},
		Role: role,
	}
	return s.tokens.Generate(claims)
}

// authMiddleware returns a Gin middleware validating a Bearer token against
// validator and storing the parsed claims in request context. Grounded on
// the teacher's server/middleware.Auth, trimmed to the one scheme (Bearer)
// and one header (Authorization) this surface needs.
func authMiddleware(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		ctx := authctx.Set(c.Request.Context(), claims)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
