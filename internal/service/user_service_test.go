package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"xclub/internal/entity"
	"xclub/internal/repository"
)

type stubUserRepo struct {
	createFn         func(ctx context.Context, user *entity.User) error
	findByOpenIDFn   func(ctx context.Context, openID string) (*entity.User, error)
	findByIDFn       func(ctx context.Context, id int64) (*entity.User, error)
	updateByOpenIDFn func(ctx context.Context, openID string, fields map[string]any) (int64, error)
	updateRoleFn     func(ctx context.Context, openID string, role entity.UserRole) (int64, error)
}

func (r *stubUserRepo) Create(ctx context.Context, user *entity.User) error {
	return r.createFn(ctx, user)
}

func (r *stubUserRepo) FindByOpenID(ctx context.Context, openID string) (*entity.User, error) {
	return r.findByOpenIDFn(ctx, openID)
}

func (r *stubUserRepo) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	return r.findByIDFn(ctx, id)
}

func (r *stubUserRepo) UpdateByOpenID(ctx context.Context, openID string, fields map[string]any) (int64, error) {
	return r.updateByOpenIDFn(ctx, openID, fields)
}

func (r *stubUserRepo) UpdateRole(ctx context.Context, openID string, role entity.UserRole) (int64, error) {
	return r.updateRoleFn(ctx, openID, role)
}

// stubTransactor hands the same repos back to the closure. Rollback is
// approximated by the error return; state-level rollback is covered by the
// store-backed repository tests.
type stubTransactor struct {
	users repository.UserRepository
	codes repository.ActivationCodeRepository
}

func (t *stubTransactor) WithinTransaction(_ context.Context, fn func(users repository.UserRepository, codes repository.ActivationCodeRepository) error) error {
	return fn(t.users, t.codes)
}

func newUserServiceForTest(users *stubUserRepo, codes *stubCodeRepo) *UserService {
	codeSvc := NewActivationCodeService(codes, nil, newFakeClock(), testLogger())
	tx := &stubTransactor{users: users, codes: codes}
	return NewUserService(users, codeSvc, tx, nil, newFakeClock(), testLogger())
}

func unusedCode() *entity.ActivationCode {
	return &entity.ActivationCode{Code: "VALIDCODE001", State: entity.CodeStateUnused}
}

func TestRegisterAlreadyRegisteredShortCircuits(t *testing.T) {
	var codeLookups int
	users := &stubUserRepo{
		findByOpenIDFn: func(context.Context, string) (*entity.User, error) {
			return &entity.User{ID: 9, OpenID: "member-1", Role: entity.RoleMember}, nil
		},
	}
	codes := &stubCodeRepo{
		findByCodeFn: func(context.Context, string) (*entity.ActivationCode, error) {
			codeLookups++
			return unusedCode(), nil
		},
	}
	svc := newUserServiceForTest(users, codes)

	id, err := svc.Register(context.Background(), "member-1", "VALIDCODE001", "", "", "")
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if id != 9 {
		t.Fatalf("expected existing id 9, got %d", id)
	}
	if codeLookups != 0 {
		t.Fatal("code was inspected for an already registered user")
	}
}

func TestRegisterInvalidCodeLeavesUserUntouched(t *testing.T) {
	var mutations int
	users := &stubUserRepo{
		findByOpenIDFn: func(context.Context, string) (*entity.User, error) { return nil, nil },
		createFn: func(context.Context, *entity.User) error {
			mutations++
			return nil
		},
	}
	codes := &stubCodeRepo{
		findByCodeFn: func(context.Context, string) (*entity.ActivationCode, error) {
			return &entity.ActivationCode{Code: "SPENT0000001", State: entity.CodeStateUsed}, nil
		},
	}
	svc := newUserServiceForTest(users, codes)

	_, err := svc.Register(context.Background(), "visitor-1", "SPENT0000001", "Ann", "", "")
	if !errors.Is(err, ErrCodeUsed) {
		t.Fatalf("expected ErrCodeUsed, got %v", err)
	}
	if mutations != 0 {
		t.Fatal("user was mutated despite invalid code")
	}
}

func TestRegisterCreatesNewMember(t *testing.T) {
	var created *entity.User
	var consumedBy int64
	users := &stubUserRepo{
		findByOpenIDFn: func(context.Context, string) (*entity.User, error) { return nil, nil },
		createFn: func(_ context.Context, user *entity.User) error {
			user.ID = 42
			created = user
			return nil
		},
	}
	codes := &stubCodeRepo{
		findByCodeFn: func(context.Context, string) (*entity.ActivationCode, error) {
			return unusedCode(), nil
		},
		markUsedFn: func(_ context.Context, _ string, userID int64, _ time.Time) (int64, error) {
			consumedBy = userID
			return 1, nil
		},
	}
	svc := newUserServiceForTest(users, codes)

	id, err := svc.Register(context.Background(), "new-1", "VALIDCODE001", "Ann", "annie", "http://a")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected id 42, got %d", id)
	}
	if created == nil || created.Role != entity.RoleMember || created.Realname != "Ann" {
		t.Fatalf("member not created as expected: %+v", created)
	}
	if consumedBy != 42 {
		t.Fatalf("code consumed with user %d, want 42", consumedBy)
	}
}

func TestRegisterPromotesVisitorInPlace(t *testing.T) {
	var patched map[string]any
	users := &stubUserRepo{
		findByOpenIDFn: func(context.Context, string) (*entity.User, error) {
			return &entity.User{ID: 7, OpenID: "visitor-2", Role: entity.RoleVisitor, Realname: "kept"}, nil
		},
		updateByOpenIDFn: func(_ context.Context, _ string, fields map[string]any) (int64, error) {
			patched = fields
			return 1, nil
		},
	}
	codes := &stubCodeRepo{
		findByCodeFn: func(context.Context, string) (*entity.ActivationCode, error) {
			return unusedCode(), nil
		},
		markUsedFn: func(context.Context, string, int64, time.Time) (int64, error) {
			return 1, nil
		},
	}
	svc := newUserServiceForTest(users, codes)

	id, err := svc.Register(context.Background(), "visitor-2", "VALIDCODE001", "", "nick", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id != 7 {
		t.Fatalf("expected existing id 7, got %d", id)
	}
	if patched["role"] != entity.RoleMember {
		t.Fatalf("promotion missing from patch: %v", patched)
	}
	if patched["nickname"] != "nick" {
		t.Fatalf("supplied nickname missing from patch: %v", patched)
	}
	if _, ok := patched["realname"]; ok {
		t.Fatal("empty realname overwrote existing value")
	}
}

func TestRegisterLostConsumptionRaceAborts(t *testing.T) {
	users := &stubUserRepo{
		findByOpenIDFn: func(context.Context, string) (*entity.User, error) { return nil, nil },
		createFn: func(_ context.Context, user *entity.User) error {
			user.ID = 5
			return nil
		},
	}
	codes := &stubCodeRepo{
		findByCodeFn: func(context.Context, string) (*entity.ActivationCode, error) {
			return unusedCode(), nil
		},
		markUsedFn: func(context.Context, string, int64, time.Time) (int64, error) {
			return 0, nil
		},
	}
	svc := newUserServiceForTest(users, codes)

	_, err := svc.Register(context.Background(), "racer-1", "VALIDCODE001", "", "", "")
	if !errors.Is(err, ErrCodeUsed) {
		t.Fatalf("expected ErrCodeUsed on lost race, got %v", err)
	}
}

func TestUpdateRoleRejectsUnknownValue(t *testing.T) {
	var storeCalls int
	users := &stubUserRepo{
		updateRoleFn: func(context.Context, string, entity.UserRole) (int64, error) {
			storeCalls++
			return 1, nil
		},
	}
	svc := newUserServiceForTest(users, &stubCodeRepo{})

	err := svc.UpdateRole(context.Background(), "u1", entity.UserRole(7))
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if storeCalls != 0 {
		t.Fatal("store was called for an invalid role")
	}

	err = svc.UpdateRole(context.Background(), "u1", entity.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateRole: %v", err)
	}
	if storeCalls != 1 {
		t.Fatalf("expected 1 store call, got %d", storeCalls)
	}
}

func TestUpdateRoleMissingUser(t *testing.T) {
	users := &stubUserRepo{
		updateRoleFn: func(context.Context, string, entity.UserRole) (int64, error) {
			return 0, nil
		},
	}
	svc := newUserServiceForTest(users, &stubCodeRepo{})

	err := svc.UpdateRole(context.Background(), "ghost", entity.RoleMember)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateEmptyPatchIsNoOp(t *testing.T) {
	var storeCalls int
	users := &stubUserRepo{
		updateByOpenIDFn: func(context.Context, string, map[string]any) (int64, error) {
			storeCalls++
			return 1, nil
		},
	}
	svc := newUserServiceForTest(users, &stubCodeRepo{})

	updated, err := svc.Update(context.Background(), "u1", UserUpdate{})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated {
		t.Fatal("empty patch reported as applied")
	}
	if storeCalls != 0 {
		t.Fatal("store was called for an empty patch")
	}
}

func TestGetOrCreatePatchesChangedProfile(t *testing.T) {
	var patched map[string]any
	users := &stubUserRepo{
		findByOpenIDFn: func(context.Context, string) (*entity.User, error) {
			return &entity.User{ID: 3, OpenID: "u2", Nickname: "old", Avatar: "same"}, nil
		},
		updateByOpenIDFn: func(_ context.Context, _ string, fields map[string]any) (int64, error) {
			patched = fields
			return 1, nil
		},
	}
	svc := newUserServiceForTest(users, &stubCodeRepo{})

	user, created, err := svc.GetOrCreate(context.Background(), "u2", "new", "same")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if created {
		t.Fatal("existing user reported as created")
	}
	if user.Nickname != "new" {
		t.Fatalf("expected patched nickname, got %q", user.Nickname)
	}
	if _, ok := patched["avatar"]; ok {
		t.Fatal("unchanged avatar included in patch")
	}
}

func TestGetOrCreateCreatesVisitor(t *testing.T) {
	var created *entity.User
	users := &stubUserRepo{
		findByOpenIDFn: func(context.Context, string) (*entity.User, error) { return nil, nil },
		createFn: func(_ context.Context, user *entity.User) error {
			user.ID = 11
			copied := *user
			created = &copied
			return nil
		},
		findByIDFn: func(context.Context, int64) (*entity.User, error) {
			return created, nil
		},
	}
	svc := newUserServiceForTest(users, &stubCodeRepo{})

	user, isNew, err := svc.GetOrCreate(context.Background(), "u3", "nick", "")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !isNew {
		t.Fatal("new user not reported as created")
	}
	if user.Role != entity.RoleVisitor {
		t.Fatalf("expected visitor role, got %d", user.Role)
	}
}

func TestIsAdmin(t *testing.T) {
	users := &stubUserRepo{
		findByOpenIDFn: func(_ context.Context, openID string) (*entity.User, error) {
			if openID == "admin-1" {
				return &entity.User{OpenID: openID, Role: entity.RoleAdmin}, nil
			}
			return &entity.User{OpenID: openID, Role: entity.RoleMember}, nil
		},
	}
	svc := newUserServiceForTest(users, &stubCodeRepo{})

	ok, err := svc.IsAdmin(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}
	if !ok {
		t.Fatal("admin not recognized")
	}

	ok, err = svc.IsAdmin(context.Background(), "member-1")
	if err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}
	if ok {
		t.Fatal("member reported as admin")
	}
}
