package admins

import "time"

// Roles recognized by the registry. The split is advisory at this layer: it
// gates which editors the panel shows, while the store's own access rules
// remain the enforcement boundary.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super-admin"
)

// Admin is one entry of the authorization registry kept under admins/<uid>.
// It is separate from the content model.
type Admin struct {
	UID     string    `bson:"_id" json:"uid"`
	Email   string    `bson:"email" json:"email"`
	Role    string    `bson:"role" json:"role"`
	AddedAt time.Time `bson:"addedAt" json:"addedAt"`
	AddedBy string    `bson:"addedBy" json:"addedBy"`
}

// ValidRole reports whether role is one of the recognized roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
