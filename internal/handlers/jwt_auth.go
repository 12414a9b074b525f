package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/collegehub-edu/portal-service/internal/auth"
	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/repositories"
	"github.com/collegehub-edu/portal-service/internal/services"
)

// JWTAuthMiddleware is the request gate: it authenticates inbound requests
// with the access token and enforces per-route role policy.
type JWTAuthMiddleware struct {
	tokens   *auth.TokenService
	userRepo repositories.UserRepository
}

func NewJWTAuthMiddleware(tokens *auth.TokenService, userRepo repositories.UserRepository) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{tokens: tokens, userRepo: userRepo}
}

// AuthMiddleware verifies the bearer access token and attaches the current
// user to the request context. Stale access tokens for changed accounts stay
// valid until natural expiry; only a deleted user is rejected here.
func (m *JWTAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWith(c, services.ErrMissingAccessToken)
			return
		}

		claims, err := m.tokens.VerifyAccessToken(token)
		if err != nil {
			abortWith(c, services.ErrInvalidAccessToken)
			return
		}

		user, err := m.userRepo.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				abortWith(c, services.ErrUserGone)
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Success: false, Message: "Internal server error"})
			return
		}

		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("user_role", user.Role)
		c.Next()
	}
}

// RequireRole checks the authenticated user's role against the allow-list.
func (m *JWTAuthMiddleware) RequireRole(allowedRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetUserRoleFromContext(c)
		if err != nil {
			abortWith(c, services.ErrForbidden)
			return
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abortWith(c, services.ErrForbidden)
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abortWith(c *gin.Context, err *services.AppError) {
	c.AbortWithStatusJSON(err.Status, ErrorResponse{Success: false, Message: err.Message})
}

func GetUserFromContext(c *gin.Context) (*models.User, error) {
	value, exists := c.Get("user")
	if !exists {
		return nil, fmt.Errorf("user not found in context")
	}
	user, ok := value.(*models.User)
	if !ok {
		return nil, fmt.Errorf("invalid user type in context")
	}
	return user, nil
}

func GetUserIDFromContext(c *gin.Context) (string, error) {
	value, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}
	id, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}
	return id, nil
}

func GetUserRoleFromContext(c *gin.Context) (models.UserRole, error) {
	value, exists := c.Get("user_role")
	if !exists {
		return "", fmt.Errorf("user role not found in context")
	}
	role, ok := value.(models.UserRole)
	if !ok {
		return "", fmt.Errorf("invalid user role type in context")
	}
	return role, nil
}
