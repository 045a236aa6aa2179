package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/itechs-edu/exam-service/internal/auth"
	"github.com/itechs-edu/exam-service/internal/models"
	"github.com/itechs-edu/exam-service/internal/repositories"
)

// AuthMiddleware verifies bearer tokens and loads the account behind them.
type AuthMiddleware struct {
	tokens   *auth.TokenService
	userRepo repositories.UserRepository
}

func NewAuthMiddleware(tokens *auth.TokenService, userRepo repositories.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, userRepo: userRepo}
}

func (am *AuthMiddleware) abort(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, ErrorResponse{
		Status:  "error",
		Message: message,
	})
	c.Abort()
}

// Authenticate requires a valid token and a live account. Archived accounts
// are rejected even when their token is still valid.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			am.abort(c, "Authorization header missing or malformed")
			return
		}

		claims, err := am.tokens.Verify(token)
		if err != nil {
			if err == auth.ErrTokenExpired {
				am.abort(c, "Token has expired")
			} else {
				am.abort(c, "Invalid token")
			}
			return
		}

		user, err := am.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err != nil {
			am.abort(c, "Account no longer exists")
			return
		}
		if user.IsArchived {
			am.abort(c, "This account has been archived")
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)
		c.Next()
	}
}

// OptionalAuthenticate loads the user when a valid token is present and
// continues anonymously otherwise.
func (am *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := am.tokens.Verify(token)
		if err != nil {
			c.Next()
			return
		}

		user, err := am.userRepo.GetByID(c.Request.Context(), claims.UserID)
		if err == nil && !user.IsArchived {
			c.Set("user_id", user.ID)
			c.Set("user", user)
			c.Set("user_role", user.Role)
			c.Set("user_email", user.Email)
		}
		c.Next()
	}
}

// RequireRole allows only the listed roles past. Super admins always pass.
func (am *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			am.abort(c, "User not authenticated")
			return
		}

		if user.Role == models.RoleSuperAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{
			Status:  "error",
			Message: "You do not have permission to access this resource",
		})
		c.Abort()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
