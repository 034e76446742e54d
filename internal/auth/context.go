package auth

import "github.com/gin-gonic/gin"

// GetActorID returns the authenticated actor's ID or empty string.
func GetActorID(c *gin.Context) string {
	if v, ok := c.Get("actorID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetStayID returns the guest's stay ID, or empty string for staff tokens.
func GetStayID(c *gin.Context) string {
	if v, ok := c.Get("stayID"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetRole returns the authenticated actor's role or empty string.
func GetRole(c *gin.Context) string {
	if v, ok := c.Get("role"); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IsStaff reports whether the current actor holds a staff token.
func IsStaff(c *gin.Context) bool {
	return GetRole(c) == RoleStaff
}
