package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"datamind-backend/internal/shared/auth"
	"datamind-backend/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
)

// FirebaseVerifier verifies Firebase ID tokens. *fbauth.Client satisfies it.
type FirebaseVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Auth resolves the caller's identity and stores it in the request context.
// Identity sources, in order: a locally signed session JWT, a Firebase ID
// token (when a verifier is configured), or an X-Guest-Id header. Requests
// with no identity pass through anonymously; handlers that need a session
// enforce it themselves.
func Auth(firebaseAuth FirebaseVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Preflight requests never reach this middleware; CORS aborts
		// them earlier in the chain.
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			if claims, err := auth.VerifyJWT(token); err == nil {
				setIdentity(c, claims.Sub, claims.Email, claims.Name, claims.Picture)
				c.Next()
				return
			}

			if firebaseAuth != nil {
				decoded, err := firebaseAuth.VerifyIDToken(c.Request.Context(), token)
				if err == nil && decoded.UID != "" {
					setIdentity(c,
						"firebase:"+decoded.UID,
						stringClaim(decoded.Claims, "email"),
						stringClaim(decoded.Claims, "name"),
						stringClaim(decoded.Claims, "picture"),
					)
					c.Next()
					return
				}
			}

			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		if guestID := strings.TrimSpace(c.GetHeader("X-Guest-Id")); guestID != "" {
			c.Set(userIDKey, "guest:"+guestID)
			c.Set("isGuest", true)
			c.Next()
			return
		}

		// Anonymous: no identity in context.
		c.Next()
	}
}

func setIdentity(c *gin.Context, sub, email, name, picture string) {
	c.Set(userIDKey, sub)
	if email != "" {
		c.Set(userEmailKey, email)
	}
	if name != "" {
		c.Set(userNameKey, name)
	}
	if picture != "" {
		c.Set(userPictureKey, picture)
	}
	c.Set("isGuest", false)
}

func stringClaim(claims map[string]interface{}, key string) string {
	if claims == nil {
		return ""
	}
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// RequireUser aborts with 401 when the request carries no identity.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusUnauthorized, "login_required", "Login required", nil)
			return
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userNameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userPictureKey)
	if picture, ok := val.(string); ok {
		return picture
	}
	return ""
}
