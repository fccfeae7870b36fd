package service

import (
	"context"
	"time"

	"xclub/internal/entity"
	"xclub/internal/repository"
	"xclub/internal/utils"

	"github.com/sirupsen/logrus"
)

const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionService owns creation, lookup, expiry and invalidation of sessions.
// Expiry is enforced at read time; SweepExpired exists for storage hygiene only.
type SessionService struct {
	sessions repository.SessionRepository
	audit    repository.AuditLogRepository
	clock    Clock
	ttl      time.Duration
	log      logrus.FieldLogger
}

func NewSessionService(
	sessions repository.SessionRepository,
	audit repository.AuditLogRepository,
	clock Clock,
	ttl time.Duration,
	log logrus.FieldLogger,
) *SessionService {
	if clock == nil {
		clock = RealClock{}
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		sessions: sessions,
		audit:    audit,
		clock:    clock,
		ttl:      ttl,
		log:      log,
	}
}

// Create issues a fresh session for the identity, superseding any existing one.
// The delete and the insert are separate statements; a crash in between leaves
// the user with zero sessions, which the next login heals.
func (s *SessionService) Create(ctx context.Context, openID, sessionKey, nickname, avatarURL string) (string, error) {
	if _, err := s.sessions.DeleteByOpenID(ctx, openID); err != nil {
		return "", err
	}

	token, err := utils.GenerateSessionToken()
	if err != nil {
		return "", err
	}

	now := s.clock.Now().Unix()
	session := &entity.Session{
		Token:      token,
		OpenID:     openID,
		SessionKey: sessionKey,
		Nickname:   nickname,
		AvatarURL:  avatarURL,
		CreatedAt:  now,
		ExpireAt:   now + int64(s.ttl.Seconds()),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}

	_ = writeAudit(ctx, s.audit, entity.AuditLogin, openID, nil, map[string]any{"expire_at": session.ExpireAt})
	s.log.WithFields(logrus.Fields{"openid": openID, "expire_at": session.ExpireAt}).Info("session created")
	return token, nil
}

// Get resolves a token to its session. An expired row is deleted and reported
// absent; callers cannot distinguish expired from missing.
func (s *SessionService) Get(ctx context.Context, token string) (*entity.Session, error) {
	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, nil
	}

	if session.IsExpired(s.clock.Now().Unix()) {
		if _, err := s.sessions.DeleteByToken(ctx, token); err != nil {
			return nil, err
		}
		s.log.WithField("openid", session.OpenID).Debug("session expired on read")
		return nil, nil
	}
	return session, nil
}

func (s *SessionService) Delete(ctx context.Context, token string) (bool, error) {
	affected, err := s.sessions.DeleteByToken(ctx, token)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *SessionService) DeleteByOpenID(ctx context.Context, openID string) (bool, error) {
	affected, err := s.sessions.DeleteByOpenID(ctx, openID)
	if err != nil {
		return false, err
	}
	if affected > 0 {
		_ = writeAudit(ctx, s.audit, entity.AuditLogout, openID, nil, nil)
		s.log.WithField("openid", openID).Info("session deleted")
	}
	return affected > 0, nil
}

// SessionUpdate carries the only fields a session update may touch.
type SessionUpdate struct {
	Nickname  *string
	AvatarURL *string
}

// Update patches nickname and avatar. Anything else is not updatable; an empty
// patch is a no-op reported as false.
func (s *SessionService) Update(ctx context.Context, token string, update SessionUpdate) (bool, error) {
	fields := map[string]any{}
	if update.Nickname != nil {
		fields["nickname"] = *update.Nickname
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}
	if len(fields) == 0 {
		return false, nil
	}

	affected, err := s.sessions.UpdateByToken(ctx, token, fields)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SweepExpired removes rows already past expiry. Correctness does not depend
// on it; Get enforces expiry on read.
func (s *SessionService) SweepExpired(ctx context.Context) (int64, error) {
	affected, err := s.sessions.DeleteExpired(ctx, s.clock.Now().Unix())
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		s.log.WithField("count", affected).Info("expired sessions swept")
	}
	return affected, nil
}

// GetOrCreate reports whether the identity had no prior session row, then
// unconditionally issues a new session. The flag approximates "new user": a
// returning user whose session lapsed is reported as new. Kept to preserve the
// upstream behavior callers depend on.
func (s *SessionService) GetOrCreate(ctx context.Context, openID, sessionKey, nickname, avatarURL string) (string, bool, error) {
	existing, err := s.sessions.FindByOpenID(ctx, openID)
	if err != nil {
		return "", false, err
	}
	isNewUser := existing == nil

	token, err := s.Create(ctx, openID, sessionKey, nickname, avatarURL)
	if err != nil {
		return "", false, err
	}
	return token, isNewUser, nil
}

