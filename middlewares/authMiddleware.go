package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/rodmar/rodmar_backend/utils"
	"github.com/gin-gonic/gin"
)

const TokenCookie = "token"

type authString string

// AuthMiddleware accepts a bearer token, falling back to the token cookie.
// A missing or invalid token ends the request with 401 and clears the cookie.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.Request.Header.Get("Authorization"))
		if token == "" {
			token, _ = c.Cookie(TokenCookie)
		}
		if token == "" {
			Unauthorized(c)
			return
		}
		claims, err := utils.ClaimsFromToken(token)
		if err != nil {
			Unauthorized(c)
			return
		}

		ctx := utils.SetUsernameInContext(c.Request.Context(), claims.Username)
		ctx = utils.SetUserIdInContext(ctx, claims.ID)
		ctx = utils.SetRoleInContext(ctx, claims.Role)
		c.Request = c.Request.WithContext(ctx)
		c.Set(string(authString("auth")), claims)
		c.Next()
	}
}

func bearerToken(header string) string {
	const bearer = "Bearer "
	if len(header) < len(bearer) || !strings.EqualFold(header[:len(bearer)], bearer) {
		return ""
	}
	return strings.TrimSpace(header[len(bearer):])
}

// Unauthorized clears the token cookie and aborts with the error body clients
// use to send the user back to the login screen.
func Unauthorized(c *gin.Context) {
	c.SetCookie(TokenCookie, "", -1, "/", "", false, true)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": utils.ErrorNotAuthenticated.Error()})
}

// RequireRole lets only the given roles through; it must run after AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := utils.GetRoleFromContext(c.Request.Context())
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	}
}

// Claims returns the token claims AuthMiddleware stored on c.
func Claims(c *gin.Context) *utils.JwtCustomClaim {
	raw, _ := c.Get(string(authString("auth")))
	claims, _ := raw.(*utils.JwtCustomClaim)
	return claims
}
