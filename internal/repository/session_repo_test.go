package repository

import (
	"context"
	"testing"
	"time"

	"xclub/internal/entity"
)

func seedSession(t *testing.T, repo SessionRepository, token, openID string, expireAt int64) {
	t.Helper()
	now := time.Now().Unix()
	if err := repo.Create(context.Background(), &entity.Session{
		Token:      token,
		OpenID:     openID,
		SessionKey: "secret",
		CreatedAt:  now,
		ExpireAt:   expireAt,
	}); err != nil {
		t.Fatalf("seed session: %v", err)
	}
}

func TestSessionFindByToken(t *testing.T) {
	repo := NewSessionRepository(newRepositoryDBForTest(t))
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour).Unix()
	seedSession(t, repo, "tok-1", "openid-1", expiry)

	session, err := repo.FindByToken(ctx, "tok-1")
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if session == nil || session.OpenID != "openid-1" {
		t.Fatalf("expected openid-1, got %+v", session)
	}

	absent, err := repo.FindByToken(ctx, "tok-unknown")
	if err != nil {
		t.Fatalf("FindByToken absent: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected absent, got %+v", absent)
	}
}

func TestSessionDeleteByOpenID(t *testing.T) {
	repo := NewSessionRepository(newRepositoryDBForTest(t))
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour).Unix()
	seedSession(t, repo, "tok-a", "openid-2", expiry)

	affected, err := repo.DeleteByOpenID(ctx, "openid-2")
	if err != nil {
		t.Fatalf("DeleteByOpenID: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row deleted, got %d", affected)
	}

	session, err := repo.FindByToken(ctx, "tok-a")
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if session != nil {
		t.Fatalf("expected session gone, got %+v", session)
	}
}

func TestSessionUpdateByToken(t *testing.T) {
	repo := NewSessionRepository(newRepositoryDBForTest(t))
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour).Unix()
	seedSession(t, repo, "tok-b", "openid-3", expiry)

	affected, err := repo.UpdateByToken(ctx, "tok-b", map[string]any{"nickname": "alice"})
	if err != nil {
		t.Fatalf("UpdateByToken: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 row updated, got %d", affected)
	}

	session, err := repo.FindByToken(ctx, "tok-b")
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if session.Nickname != "alice" {
		t.Fatalf("expected nickname alice, got %q", session.Nickname)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	repo := NewSessionRepository(newRepositoryDBForTest(t))
	ctx := context.Background()
	now := time.Now().Unix()
	seedSession(t, repo, "tok-old", "openid-4", now-10)
	seedSession(t, repo, "tok-new", "openid-5", now+3600)

	affected, err := repo.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if affected != 1 {
		t.Fatalf("expected 1 expired row deleted, got %d", affected)
	}

	kept, err := repo.FindByToken(ctx, "tok-new")
	if err != nil {
		t.Fatalf("FindByToken: %v", err)
	}
	if kept == nil {
		t.Fatal("live session was swept")
	}
}
