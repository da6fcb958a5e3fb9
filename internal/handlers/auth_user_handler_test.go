package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"absensi/internal/models"
	"absensi/internal/services"
)

type stubAuth struct{ err error }

func (s stubAuth) Register(_ context.Context, req models.RegisterRequest) (*models.User, *services.TokenPair, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return &models.User{ID: 1, Email: req.Email, Role: models.RoleEmployee}, &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s stubAuth) Login(context.Context, string, string) (*models.User, *services.TokenPair, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return &models.User{ID: 1}, &services.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (s stubAuth) Refresh(context.Context, string) (*services.TokenPair, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil
}

func authRouter(svc AuthService) *gin.Engine {
	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/register", h.Register)
	r.POST("/login", h.Login)
	r.POST("/refresh", h.RefreshToken)
	return r
}

func TestAuthHandlers(t *testing.T) {
	cases := []struct {
		name string
		err  error
		path string
		body gin.H
		want int
	}{
		{"register", nil, "/register", gin.H{"name": "Budi", "email": "budi@x.id", "password": "secret1"}, http.StatusCreated},
		{"register short password", nil, "/register", gin.H{"name": "Budi", "email": "budi@x.id", "password": "123"}, http.StatusBadRequest},
		{"register taken", services.ErrEmailTaken, "/register", gin.H{"name": "Budi", "email": "budi@x.id", "password": "secret1"}, http.StatusBadRequest},
		{"login wrong password", services.ErrInvalidCredentials, "/login", gin.H{"email": "budi@x.id", "password": "nope"}, http.StatusUnauthorized},
		{"refresh revoked", services.ErrInvalidToken, "/refresh", gin.H{"refresh_token": "old"}, http.StatusUnauthorized},
		{"refresh missing", nil, "/refresh", gin.H{}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := send(authRouter(stubAuth{err: tc.err}), http.MethodPost, tc.path, tc.body)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d (%s)", w.Code, tc.want, w.Body.String())
			}
		})
	}
}

func TestRegisterReturnsTokens(t *testing.T) {
	w := send(authRouter(stubAuth{}), http.MethodPost, "/register", gin.H{
		"name": "Budi", "email": "budi@x.id", "password": "secret1",
	})
	body := decode(t, w)
	if body["token"] != "a" {
		t.Errorf("token = %v", body["token"])
	}
	if _, ok := body["user"].(map[string]interface{}); !ok {
		t.Errorf("user missing: %v", body)
	}
}

type stubUsers struct {
	UserService
	deleted int
}

func (s *stubUsers) Delete(_ context.Context, id int) error {
	s.deleted = id
	return nil
}

func TestDeleteUserRefusesSelf(t *testing.T) {
	svc := &stubUsers{}
	h := NewUserHandler(svc)
	r := gin.New()
	r.DELETE("/users/:id", as(1, models.RoleAdmin), h.DeleteUser)

	if w := send(r, http.MethodDelete, "/users/1", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("self delete status = %d", w.Code)
	}
	if w := send(r, http.MethodDelete, "/users/2", nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d", w.Code)
	}
	if svc.deleted != 2 {
		t.Errorf("deleted = %d", svc.deleted)
	}
}
