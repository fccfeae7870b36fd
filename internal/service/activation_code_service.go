package service

import (
	"context"

	"xclub/internal/entity"
	"xclub/internal/repository"
	"xclub/internal/utils"

	"github.com/sirupsen/logrus"
)

const activationCodeLength = 12

// ActivationCodeService owns the activation-code state machine:
// UNUSED -> USED via Use, UNUSED -> INVALID via Invalidate. Both transitions
// are conditional updates evaluated by the store, so concurrent attempts on
// the same code produce exactly one winner.
type ActivationCodeService struct {
	codes repository.ActivationCodeRepository
	audit repository.AuditLogRepository
	clock Clock
	log   logrus.FieldLogger
}

func NewActivationCodeService(
	codes repository.ActivationCodeRepository,
	audit repository.AuditLogRepository,
	clock Clock,
	log logrus.FieldLogger,
) *ActivationCodeService {
	if clock == nil {
		clock = RealClock{}
	}
	return &ActivationCodeService{
		codes: codes,
		audit: audit,
		clock: clock,
		log:   log,
	}
}

// Create inserts a freshly generated code in the UNUSED state. A generation
// collision is not retried; the unique key on code surfaces it as the insert
// error.
func (s *ActivationCodeService) Create(ctx context.Context, remark string) (string, error) {
	code, err := utils.GenerateActivationCode(activationCodeLength)
	if err != nil {
		return "", err
	}

	record := &entity.ActivationCode{
		Code:   code,
		State:  entity.CodeStateUnused,
		Remark: remark,
	}
	if err := s.codes.Create(ctx, record); err != nil {
		return "", err
	}

	_ = writeAudit(ctx, s.audit, entity.AuditCodeCreated, "", nil, map[string]any{"code": code, "remark": remark})
	s.log.WithFields(logrus.Fields{"code": code, "remark": remark}).Info("activation code created")
	return code, nil
}

// BatchCreate creates count codes one by one. The batch is not atomic: on a
// mid-batch failure the codes created so far are returned alongside the error.
func (s *ActivationCodeService) BatchCreate(ctx context.Context, count int, remark string) ([]string, error) {
	codes := make([]string, 0, count)
	for i := 0; i < count; i++ {
		code, err := s.Create(ctx, remark)
		if err != nil {
			return codes, err
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// Validate is a pure read. It returns nil for a usable code and one of
// ErrCodeNotFound, ErrCodeUsed, ErrCodeInvalid otherwise.
func (s *ActivationCodeService) Validate(ctx context.Context, code string) error {
	record, err := s.codes.FindByCode(ctx, code)
	if err != nil {
		return err
	}
	if record == nil {
		return ErrCodeNotFound
	}
	switch record.State {
	case entity.CodeStateUsed:
		return ErrCodeUsed
	case entity.CodeStateInvalid:
		return ErrCodeInvalid
	}
	return nil
}

// Use consumes the code for the given user. Returns false when the code is
// absent or no longer UNUSED, including when a concurrent consumer won.
func (s *ActivationCodeService) Use(ctx context.Context, code string, userID int64) (bool, error) {
	affected, err := s.codes.MarkUsed(ctx, code, userID, s.clock.Now())
	if err != nil {
		return false, err
	}
	if affected > 0 {
		s.log.WithFields(logrus.Fields{"code": code, "user_id": userID}).Info("activation code used")
		return true, nil
	}
	s.log.WithFields(logrus.Fields{"code": code, "user_id": userID}).Warn("activation code use failed")
	return false, nil
}

// Invalidate retires an UNUSED code. It never overrides consumption: a USED
// code stays USED and false is returned.
func (s *ActivationCodeService) Invalidate(ctx context.Context, code string) (bool, error) {
	affected, err := s.codes.MarkInvalid(ctx, code)
	if err != nil {
		return false, err
	}
	if affected > 0 {
		_ = writeAudit(ctx, s.audit, entity.AuditCodeInvalidated, "", nil, map[string]any{"code": code})
		s.log.WithField("code", code).Info("activation code invalidated")
		return true, nil
	}
	return false, nil
}

func (s *ActivationCodeService) GetByCode(ctx context.Context, code string) (*entity.ActivationCode, error) {
	return s.codes.FindByCode(ctx, code)
}

// GetByUserID is the reverse audit lookup: the code a user consumed, if any.
func (s *ActivationCodeService) GetByUserID(ctx context.Context, userID int64) (*entity.ActivationCode, error) {
	return s.codes.FindByUserID(ctx, userID)
}
