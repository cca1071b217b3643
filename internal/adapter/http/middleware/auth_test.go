package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iho/ledger-es/internal/infrastructure/auth"
)

func TestAuthMiddleware(t *testing.T) {
	manager := auth.NewJWTManager("secret", time.Minute)
	writer, err := manager.Generate(auth.Principal{Subject: "ops", Role: auth.RoleWriter})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	reader, err := manager.Generate(auth.Principal{Subject: "viewer", Role: auth.RoleReader})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	protected := AuthMiddleware(manager)(RequireRole(auth.RoleWriter)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok || p.Subject != "ops" {
				t.Errorf("expected principal in context, got %+v", p)
			}
			w.WriteHeader(http.StatusNoContent)
		}),
	))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"reader on writer route", "Bearer " + reader, http.StatusForbidden},
		{"writer", "Bearer " + writer, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/ledgers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			protected.ServeHTTP(rr, req)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	rr := httptest.NewRecorder()
	RequireRole(auth.RoleReader)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
