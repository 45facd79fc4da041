package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/luminedge/academy-cms/internal/admins"
	"github.com/luminedge/academy-cms/internal/config"
)

// GenerateAccessToken creates a signed JWT access token for the admin.
// The role claim is advisory UI state; route gating re-checks the registry.
func GenerateAccessToken(cfg *config.Config, a *admins.Admin, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   a.UID,
		"email": a.Email,
		"role":  a.Role,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}
