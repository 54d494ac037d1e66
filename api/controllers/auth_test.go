package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/essenza-market/essenza-backend/api/middleware"
	authsvc "github.com/essenza-market/essenza-backend/internal/auth"
	pkgerrors "github.com/essenza-market/essenza-backend/pkg/errors"
)

type stubAuthService struct {
	session authsvc.SessionDTO
	user    authsvc.UserDTO
	err     error
}

func (s stubAuthService) Register(_ context.Context, _ authsvc.RegisterInput) (authsvc.SessionDTO, error) {
	return s.session, s.err
}

func (s stubAuthService) Login(_ context.Context, _ authsvc.LoginInput) (authsvc.SessionDTO, error) {
	return s.session, s.err
}

func (s stubAuthService) Me(_ context.Context, _ uuid.UUID) (authsvc.UserDTO, error) {
	return s.user, s.err
}

func TestRegisterSuccess(t *testing.T) {
	session := authsvc.SessionDTO{Token: "tok"}
	session.User.ID = uuid.New()
	handler := Register(stubAuthService{session: session}, nil)

	body := `{"name":"Ada","email":"ada@example.com","password":"sufficiently-long"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data authsvc.SessionDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token != "tok" {
		t.Fatalf("unexpected token %q", envelope.Data.Token)
	}
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	handler := Register(stubAuthService{}, nil)

	body := `{"name":"Ada","email":"ada@example.com","password":"short"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestRegisterConflictOnDuplicateEmail(t *testing.T) {
	handler := Register(stubAuthService{err: pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")}, nil)

	body := `{"name":"Ada","email":"ada@example.com","password":"sufficiently-long"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestLoginUnauthorized(t *testing.T) {
	handler := Login(stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid email or password")}, nil)

	body := `{"email":"ada@example.com","password":"wrong-password"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMeUsesContextIdentity(t *testing.T) {
	userID := uuid.New()
	user := authsvc.UserDTO{ID: userID, Name: "Ada"}
	handler := Me(stubAuthService{user: user}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), userID, false))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	var envelope struct {
		Data authsvc.UserDTO `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != userID {
		t.Fatalf("unexpected user id %s", envelope.Data.ID)
	}
}
