package admins

import (
	"context"
	"fmt"
)

// Service encapsulates admin-registry business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// Add registers (or updates) an admin. addedBy records who granted access.
func (s *Service) Add(ctx context.Context, uid, email, role, addedBy string) (*Admin, error) {
	if uid == "" || email == "" {
		return nil, fmt.Errorf("admins: uid and email required")
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("admins: unknown role %q", role)
	}
	return s.repo.Upsert(ctx, &Admin{UID: uid, Email: email, Role: role, AddedBy: addedBy})
}

// GetByUID returns the registry entry for uid, or nil when not registered.
func (s *Service) GetByUID(ctx context.Context, uid string) (*Admin, error) {
	return s.repo.GetByUID(ctx, uid)
}

func (s *Service) List(ctx context.Context) ([]*Admin, error) {
	return s.repo.List(ctx)
}

func (s *Service) Remove(ctx context.Context, uid string) error {
	return s.repo.Delete(ctx, uid)
}

// HasRole reports whether uid holds at least the given role. Super-admins
// satisfy the admin role.
func (s *Service) HasRole(ctx context.Context, uid, role string) (bool, error) {
	a, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, nil
	}
	if a.Role == RoleSuperAdmin {
		return true, nil
	}
	return a.Role == role, nil
}
