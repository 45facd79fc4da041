package admins

import (
	"context"
	"testing"
)

// fake repo for testing
type fakeRepo struct {
	store map[string]*Admin
}

func (f *fakeRepo) ensure() {
	if f.store == nil {
		f.store = map[string]*Admin{}
	}
}

func (f *fakeRepo) Upsert(ctx context.Context, a *Admin) (*Admin, error) {
	f.ensure()
	f.store[a.UID] = a
	return a, nil
}

func (f *fakeRepo) GetByUID(ctx context.Context, uid string) (*Admin, error) {
	f.ensure()
	a, ok := f.store[uid]
	if !ok {
		return nil, nil
	}
	return a, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]*Admin, error) {
	f.ensure()
	out := []*Admin{}
	for _, a := range f.store {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepo) Delete(ctx context.Context, uid string) error {
	f.ensure()
	delete(f.store, uid)
	return nil
}

func TestAddAndGet(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()

	a, err := svc.Add(ctx, "uid1", "jane@example.com", RoleAdmin, "root")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if a.UID != "uid1" || a.Role != RoleAdmin {
		t.Fatalf("unexpected admin: %+v", a)
	}

	got, err := svc.GetByUID(ctx, "uid1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Email != "jane@example.com" {
		t.Fatalf("unexpected lookup result: %+v", got)
	}

	// unknown role rejected
	if _, err := svc.Add(ctx, "uid2", "x@example.com", "owner", "root"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestHasRole(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()

	if _, err := svc.Add(ctx, "a1", "a@example.com", RoleAdmin, "root"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, err := svc.Add(ctx, "s1", "s@example.com", RoleSuperAdmin, "root"); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	ok, err := svc.HasRole(ctx, "a1", RoleSuperAdmin)
	if err != nil || ok {
		t.Fatalf("admin should not satisfy super-admin: ok=%v err=%v", ok, err)
	}
	ok, err = svc.HasRole(ctx, "s1", RoleAdmin)
	if err != nil || !ok {
		t.Fatalf("super-admin should satisfy admin: ok=%v err=%v", ok, err)
	}
	ok, err = svc.HasRole(ctx, "missing", RoleAdmin)
	if err != nil || ok {
		t.Fatalf("unregistered uid should have no role: ok=%v err=%v", ok, err)
	}
}

func TestRemove(t *testing.T) {
	svc := NewService(&fakeRepo{})
	ctx := context.Background()
	if _, err := svc.Add(ctx, "a1", "a@example.com", RoleAdmin, "root"); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := svc.Remove(ctx, "a1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	got, _ := svc.GetByUID(ctx, "a1")
	if got != nil {
		t.Fatalf("expected admin removed, got %+v", got)
	}
}
