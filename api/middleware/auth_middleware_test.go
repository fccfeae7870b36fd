package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"xclub/api/response"
	"xclub/internal/entity"

	"github.com/labstack/echo/v4"
)

type stubResolver struct {
	getFn func(ctx context.Context, token string) (*entity.Session, error)
}

func (r stubResolver) Get(ctx context.Context, token string) (*entity.Session, error) {
	return r.getFn(ctx, token)
}

type stubAdminChecker struct {
	isAdminFn func(ctx context.Context, openID string) (bool, error)
}

func (c stubAdminChecker) IsAdmin(ctx context.Context, openID string) (bool, error) {
	return c.isAdminFn(ctx, openID)
}

func invokeMiddleware(t *testing.T, mw echo.MiddlewareFunc, token string, prepare func(echo.Context)) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		request.Header.Set(SessionHeader, token)
	}
	recorder := httptest.NewRecorder()
	c := e.NewContext(request, recorder)
	if prepare != nil {
		prepare(c)
	}

	var reached bool
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return recorder, reached
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope
}

func TestRequireAuthMissingHeader(t *testing.T) {
	mw := AuthMiddleware{Sessions: stubResolver{
		getFn: func(context.Context, string) (*entity.Session, error) {
			t.Fatal("resolver called without a token")
			return nil, nil
		},
	}}

	recorder, reached := invokeMiddleware(t, mw.RequireAuth, "", nil)
	if reached {
		t.Fatal("handler reached without a token")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if envelope := decodeEnvelope(t, recorder); envelope.Code != response.CodeUnauthorized {
		t.Fatalf("expected code %d, got %d", response.CodeUnauthorized, envelope.Code)
	}
}

func TestRequireAuthUnresolvableToken(t *testing.T) {
	mw := AuthMiddleware{Sessions: stubResolver{
		getFn: func(context.Context, string) (*entity.Session, error) { return nil, nil },
	}}

	recorder, reached := invokeMiddleware(t, mw.RequireAuth, "stale-token", nil)
	if reached {
		t.Fatal("handler reached with an unresolvable token")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
	if envelope := decodeEnvelope(t, recorder); envelope.Code != response.CodeSessionInvalid {
		t.Fatalf("expected code %d, got %d", response.CodeSessionInvalid, envelope.Code)
	}
}

func TestRequireAuthAttachesSession(t *testing.T) {
	mw := AuthMiddleware{Sessions: stubResolver{
		getFn: func(_ context.Context, token string) (*entity.Session, error) {
			if token != "live-token" {
				t.Fatalf("unexpected token %q", token)
			}
			return &entity.Session{Token: token, OpenID: "oid-1"}, nil
		},
	}}

	e := echo.New()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(SessionHeader, "live-token")
	recorder := httptest.NewRecorder()
	c := e.NewContext(request, recorder)

	handler := mw.RequireAuth(func(c echo.Context) error {
		session, ok := SessionFromContext(c)
		if !ok || session.OpenID != "oid-1" {
			t.Fatalf("session missing from context: %+v", session)
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestOptionalAuthContinuesWithoutSession(t *testing.T) {
	mw := AuthMiddleware{Sessions: stubResolver{
		getFn: func(context.Context, string) (*entity.Session, error) { return nil, nil },
	}}

	recorder, reached := invokeMiddleware(t, mw.OptionalAuth, "stale-token", nil)
	if !reached {
		t.Fatal("handler not reached on optional auth")
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	session := &entity.Session{Token: "tok", OpenID: "oid-admin"}
	attach := func(c echo.Context) { SetSession(c, session) }

	mw := AdminMiddleware{Users: stubAdminChecker{
		isAdminFn: func(_ context.Context, openID string) (bool, error) {
			return openID == "oid-admin", nil
		},
	}}

	recorder, reached := invokeMiddleware(t, mw.RequireAdmin, "", attach)
	if !reached {
		t.Fatal("admin blocked")
	}
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}

	session = &entity.Session{Token: "tok", OpenID: "oid-member"}
	recorder, reached = invokeMiddleware(t, mw.RequireAdmin, "", func(c echo.Context) { SetSession(c, session) })
	if reached {
		t.Fatal("non-admin reached handler")
	}
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", recorder.Code)
	}
	if envelope := decodeEnvelope(t, recorder); envelope.Code != response.CodeForbidden {
		t.Fatalf("expected code %d, got %d", response.CodeForbidden, envelope.Code)
	}

	recorder, reached = invokeMiddleware(t, mw.RequireAdmin, "", nil)
	if reached {
		t.Fatal("anonymous request reached handler")
	}
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}
