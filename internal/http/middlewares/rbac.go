package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/secondserve/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only for the listed roles. It must run
// after RequireAuth.
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	message := "Required role: " + strings.Join(names, ", ")

	return func(c *gin.Context) {
		u, ok := UserFromContext(c)

		if !ok {
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		for _, r := range roles {
			if u.Role == r {
				c.Next()
				return
			}
		}

		abortWithError(c, http.StatusForbidden, "forbidden", message)
	}
}
