package service

import (
	"errors"
	"testing"
	"time"
	"zhitu_backend/internal/config"
	"zhitu_backend/internal/model"
	"zhitu_backend/internal/repository"
	"zhitu_backend/internal/util"
)

func newAuthService(t *testing.T) (*AuthService, *repository.UserRepository) {
	t.Helper()
	repo := repository.NewUserRepository(newTestDB(t))
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour}}
	return NewAuthService(repo, cfg), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, repo := newAuthService(t)
	login := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = fixedClock(login)

	user, err := svc.Register(RegisterInput{Name: " 小张 ", Email: "Zhang@Example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "zhang@example.com" || user.Role != model.RoleUser || user.Password == "secret123" {
		t.Errorf("user = %+v", user)
	}

	if _, err := svc.Register(RegisterInput{Name: "x", Email: "zhang@example.com", Password: "secret123"}); !errors.Is(err, util.ErrEmailRegistered) {
		t.Errorf("duplicate: %v", err)
	}

	res, err := svc.Login("ZHANG@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	claims, err := util.ParseJWT(res.Token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != model.RoleUser {
		t.Errorf("claims = %+v", claims)
	}

	stored, _ := repo.FindByID(user.ID)
	if stored.LastLogin == nil || !stored.LastLogin.Equal(login) {
		t.Errorf("last_login = %v", stored.LastLogin)
	}
}

func TestLoginRejects(t *testing.T) {
	svc, repo := newAuthService(t)
	user, err := svc.Register(RegisterInput{Name: "小李", Email: "li@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"unknown email", "nobody@example.com", "secret123", util.ErrInvalidCredentials},
		{"wrong password", "li@example.com", "wrong", util.ErrInvalidCredentials},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(tt.email, tt.password); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if err := repo.SetDisabled(user.ID, true); err != nil {
		t.Fatalf("SetDisabled: %v", err)
	}
	if _, err := svc.Login("li@example.com", "secret123"); !errors.Is(err, util.ErrUserDisabled) {
		t.Errorf("disabled: %v", err)
	}
}

func TestProfileAndAdmin(t *testing.T) {
	svc, _ := newAuthService(t)
	admin, err := svc.CreateAdmin(RegisterInput{Name: "admin", Email: "admin@example.com", Password: "secret123"})
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("role = %s", admin.Role)
	}

	got, err := svc.Profile(admin.ID)
	if err != nil || got.Email != "admin@example.com" {
		t.Errorf("Profile = %+v, %v", got, err)
	}
	if _, err := svc.Profile(999); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("missing: %v", err)
	}
}

func TestUserServiceSetDisabled(t *testing.T) {
	auth, repo := newAuthService(t)
	svc := NewUserService(repo)
	admin, _ := auth.CreateAdmin(RegisterInput{Name: "admin", Email: "admin@example.com", Password: "secret123"})
	user, _ := auth.Register(RegisterInput{Name: "u", Email: "u@example.com", Password: "secret123"})

	if err := svc.SetDisabled(admin.ID, admin.ID, true); !util.IsKind(err, util.KindValidation) {
		t.Errorf("self disable: %v", err)
	}
	if err := svc.SetDisabled(admin.ID, 999, true); !errors.Is(err, util.ErrUserNotFound) {
		t.Errorf("missing user: %v", err)
	}
	if err := svc.SetDisabled(admin.ID, user.ID, true); err != nil {
		t.Fatalf("SetDisabled: %v", err)
	}

	users, total, err := svc.GetUsers(0, 0)
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if total != 2 || len(users) != 2 {
		t.Fatalf("total = %d, len = %d", total, len(users))
	}
	for _, u := range users {
		if u.ID == user.ID && !u.Disabled {
			t.Error("user not disabled")
		}
	}
}
