package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lessonpath/authcore"
)

const principalKey = "httpapi.principal"

// RequireAuth validates the bearer token on every request, including the
// blacklist check, so a logged-out token is rejected immediately even
// while its signature and expiry are still good.
func RequireAuth(engine *authcore.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, err := engine.Validate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": "unauthorized"})
			return
		}

		c.Set(principalKey, result)
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal set by RequireAuth.
func PrincipalFrom(c *gin.Context) (*authcore.AuthResult, bool) {
	value, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	result, ok := value.(*authcore.AuthResult)
	return result, ok
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := header[len(prefix):]
	return token, token != ""
}
