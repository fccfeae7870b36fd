package service

import (
	"context"
	"time"

	"xclub/internal/entity"
	"xclub/internal/repository"

	"github.com/sirupsen/logrus"
)

// UserService owns the durable account record, the activation-code
// registration flow and role mutation. It does not enforce authorization on
// role changes; callers gate those with IsAdmin one layer up.
type UserService struct {
	users repository.UserRepository
	codes *ActivationCodeService
	tx    repository.Transactor
	audit repository.AuditLogRepository
	clock Clock
	log   logrus.FieldLogger
}

func NewUserService(
	users repository.UserRepository,
	codes *ActivationCodeService,
	tx repository.Transactor,
	audit repository.AuditLogRepository,
	clock Clock,
	log logrus.FieldLogger,
) *UserService {
	if clock == nil {
		clock = RealClock{}
	}
	return &UserService{
		users: users,
		codes: codes,
		tx:    tx,
		audit: audit,
		clock: clock,
		log:   log,
	}
}

func (s *UserService) GetByOpenID(ctx context.Context, openID string) (*entity.User, error) {
	return s.users.FindByOpenID(ctx, openID)
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return s.users.FindByID(ctx, id)
}

// CreateUserInput carries the fields a new user may start with. Zero Role
// means visitor.
type CreateUserInput struct {
	OpenID   string
	Nickname string
	Avatar   string
	Realname string
	Role     entity.UserRole
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (int64, error) {
	role := input.Role
	if role == 0 {
		role = entity.RoleVisitor
	}
	user := &entity.User{
		OpenID:   input.OpenID,
		Nickname: input.Nickname,
		Avatar:   input.Avatar,
		Realname: input.Realname,
		Role:     role,
		State:    entity.UserStateNormal,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"openid": input.OpenID, "user_id": user.ID}).Info("user created")
	return user.ID, nil
}

// Register runs the activation-code registration flow:
//
//  1. An existing member or admin short-circuits with ErrAlreadyRegistered and
//     the existing id; no code is consumed.
//  2. The code is validated before any user mutation, so an invalid code never
//     leaves a partially promoted user.
//  3. An existing visitor is promoted to member in place, overwriting only the
//     non-empty profile fields supplied; otherwise a new member is created.
//  4. The code is consumed with the resulting user id.
//
// Steps 3 and 4 run inside one store transaction: a failed consumption rolls
// back the promotion, and losing the consumption race to a concurrent
// registration aborts with ErrCodeUsed.
func (s *UserService) Register(ctx context.Context, openID, activationCode, realname, nickname, avatar string) (int64, error) {
	existing, err := s.users.FindByOpenID(ctx, openID)
	if err != nil {
		return 0, err
	}
	if existing != nil && existing.Role >= entity.RoleMember {
		return existing.ID, ErrAlreadyRegistered
	}

	if err := s.codes.Validate(ctx, activationCode); err != nil {
		return 0, err
	}

	var userID int64
	err = s.tx.WithinTransaction(ctx, func(users repository.UserRepository, codes repository.ActivationCodeRepository) error {
		if existing != nil {
			fields := map[string]any{"role": entity.RoleMember}
			if realname != "" {
				fields["realname"] = realname
			}
			if nickname != "" {
				fields["nickname"] = nickname
			}
			if avatar != "" {
				fields["avatar"] = avatar
			}
			if _, err := users.UpdateByOpenID(ctx, openID, fields); err != nil {
				return err
			}
			userID = existing.ID
		} else {
			user := &entity.User{
				OpenID:   openID,
				Nickname: nickname,
				Avatar:   avatar,
				Realname: realname,
				Role:     entity.RoleMember,
				State:    entity.UserStateNormal,
			}
			if err := users.Create(ctx, user); err != nil {
				return err
			}
			userID = user.ID
		}

		affected, err := codes.MarkUsed(ctx, activationCode, userID, s.clock.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			// A concurrent registration consumed the code after validation.
			return ErrCodeUsed
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	_ = writeAudit(ctx, s.audit, entity.AuditRegister, openID, &userID, map[string]any{"activation_code": activationCode})
	s.log.WithFields(logrus.Fields{"openid": openID, "user_id": userID}).Info("user registered")
	return userID, nil
}

// GetOrCreate fetches the user, patching nickname and avatar when the caller
// supplies changed values. An absent user is created as a visitor.
func (s *UserService) GetOrCreate(ctx context.Context, openID, nickname, avatar string) (*entity.User, bool, error) {
	user, err := s.users.FindByOpenID(ctx, openID)
	if err != nil {
		return nil, false, err
	}

	if user != nil {
		fields := map[string]any{}
		if nickname != "" && nickname != user.Nickname {
			fields["nickname"] = nickname
		}
		if avatar != "" && avatar != user.Avatar {
			fields["avatar"] = avatar
		}
		if len(fields) > 0 {
			if _, err := s.users.UpdateByOpenID(ctx, openID, fields); err != nil {
				return nil, false, err
			}
			if patched, ok := fields["nickname"]; ok {
				user.Nickname = patched.(string)
			}
			if patched, ok := fields["avatar"]; ok {
				user.Avatar = patched.(string)
			}
		}
		return user, false, nil
	}

	id, err := s.Create(ctx, CreateUserInput{OpenID: openID, Nickname: nickname, Avatar: avatar})
	if err != nil {
		return nil, false, err
	}
	created, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

// UserUpdate carries the profile fields an update may touch. Nil fields are
// dropped; anything outside this set is not updatable.
type UserUpdate struct {
	Nickname *string
	Avatar   *string
	Realname *string
	PhoneNum *string
	Sex      *entity.UserSex
	Birthday *time.Time
	Address  *string
	Email    *string
}

func (s *UserService) Update(ctx context.Context, openID string, update UserUpdate) (bool, error) {
	fields := map[string]any{}
	if update.Nickname != nil {
		fields["nickname"] = *update.Nickname
	}
	if update.Avatar != nil {
		fields["avatar"] = *update.Avatar
	}
	if update.Realname != nil {
		fields["realname"] = *update.Realname
	}
	if update.PhoneNum != nil {
		fields["phone_num"] = *update.PhoneNum
	}
	if update.Sex != nil {
		fields["sex"] = *update.Sex
	}
	if update.Birthday != nil {
		fields["birthday"] = *update.Birthday
	}
	if update.Address != nil {
		fields["address"] = *update.Address
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if len(fields) == 0 {
		return false, nil
	}

	affected, err := s.users.UpdateByOpenID(ctx, openID, fields)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// UpdateRole sets the role unconditionally after validating the value. Values
// outside {visitor, member, admin} are rejected before any store call.
func (s *UserService) UpdateRole(ctx context.Context, openID string, role entity.UserRole) error {
	if !role.Valid() {
		return ErrInvalidRole
	}

	affected, err := s.users.UpdateRole(ctx, openID, role)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	_ = writeAudit(ctx, s.audit, entity.AuditRoleUpdate, openID, nil, map[string]any{"role": role})
	s.log.WithFields(logrus.Fields{"openid": openID, "role": role}).Info("user role updated")
	return nil
}

func (s *UserService) IsAdmin(ctx context.Context, openID string) (bool, error) {
	user, err := s.users.FindByOpenID(ctx, openID)
	if err != nil {
		return false, err
	}
	return user != nil && user.Role == entity.RoleAdmin, nil
}
