package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdataviewer-backend/internal/http/response"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/ctxutil"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
	"github.com/yungbote/pdataviewer-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireBasicAuth admits requests carrying HTTP Basic credentials of a
// stored user and records the user name on the request context.
func (am *AuthMiddleware) RequireBasicAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		name, password, ok := c.Request.BasicAuth()
		if !ok {
			am.reject(c, errors.New("missing basic auth credentials"))
			return
		}
		u, err := am.authService.Authenticate(c.Request.Context(), name, password)
		if err != nil {
			if !errors.Is(err, apperr.ErrUnauthorized) {
				am.log.Error("Authentication lookup failed", "error", err)
				response.RespondErr(c, err)
				c.Abort()
				return
			}
			am.log.Warn("Rejected credentials", "user", name)
			am.reject(c, errors.New("incorrect username or password"))
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithUserName(c.Request.Context(), u.Name))
		c.Next()
	}
}

func (am *AuthMiddleware) reject(c *gin.Context, err error) {
	c.Header("WWW-Authenticate", `Basic realm="pdataviewer"`)
	response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	c.Abort()
}
