package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/careline/internal/models"
	"gorm.io/gorm"
)

type authUserRepositoryStub struct {
	users  map[uint]models.User
	nextID uint
}

func newAuthUserRepositoryStub() *authUserRepositoryStub {
	return &authUserRepositoryStub{users: map[uint]models.User{}, nextID: 1}
}

func (stub *authUserRepositoryStub) FindByID(userID uint) (models.User, error) {
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *authUserRepositoryStub) FindByPhone(phone string) (models.User, error) {
	for _, user := range stub.users {
		if user.Phone != nil && *user.Phone == phone {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (stub *authUserRepositoryStub) FindByOpenID(openID string) (models.User, bool, error) {
	for _, user := range stub.users {
		if user.OpenID != nil && *user.OpenID == openID {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (stub *authUserRepositoryStub) ExistsByPhone(phone string) (bool, error) {
	_, err := stub.FindByPhone(phone)
	return err == nil, nil
}

func (stub *authUserRepositoryStub) Create(user *models.User) error {
	user.ID = stub.nextID
	stub.nextID++
	stub.users[user.ID] = *user
	return nil
}

func (stub *authUserRepositoryStub) UpdatePassword(userID uint, passwordHash string) error {
	user := stub.users[userID]
	user.PasswordHash = passwordHash
	stub.users[userID] = user
	return nil
}

func TestAuthServiceRegisterAndLogin(t *testing.T) {
	service := NewAuthService(newAuthUserRepositoryStub())

	user, err := service.Register("13800001234", "secret1", "")
	if err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}
	if user.Nickname != "用户1234" {
		t.Fatalf("Nickname = %q, want 用户1234", user.Nickname)
	}
	if user.PasswordHash == "secret1" || user.PasswordHash == "" {
		t.Fatal("expected bcrypt hash to be stored")
	}

	if _, err := service.Register("13800001234", "secret1", "dup"); !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
	if _, err := service.Register("13800009999", "123", ""); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	loggedIn, err := service.Login("13800001234", "secret1")
	if err != nil {
		t.Fatalf("Login() unexpected error: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Fatalf("Login() returned user %d, want %d", loggedIn.ID, user.ID)
	}
	if _, err := service.Login("13800001234", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := service.Login("10000000000", "secret1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown phone, got %v", err)
	}
}

func TestAuthServiceWechatLoginFindsOrCreates(t *testing.T) {
	service := NewAuthService(newAuthUserRepositoryStub())

	first, err := service.WechatLogin("abc")
	if err != nil {
		t.Fatalf("WechatLogin() unexpected error: %v", err)
	}
	if first.OpenID == nil || *first.OpenID != "wx_abc" || first.Nickname != "微信用户" {
		t.Fatalf("unexpected wechat user: %#v", first)
	}

	second, err := service.WechatLogin("abc")
	if err != nil {
		t.Fatalf("WechatLogin() unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same user on second login, got %d and %d", first.ID, second.ID)
	}
}

func TestAuthServiceResetPassword(t *testing.T) {
	service := NewAuthService(newAuthUserRepositoryStub())
	if _, err := service.Register("13800001234", "secret1", "Li"); err != nil {
		t.Fatalf("Register() unexpected error: %v", err)
	}

	if _, err := service.ResetPassword("13800001234", "newsecret"); err != nil {
		t.Fatalf("ResetPassword() unexpected error: %v", err)
	}
	if _, err := service.Login("13800001234", "newsecret"); err != nil {
		t.Fatalf("Login() with new password failed: %v", err)
	}
	if _, err := service.ResetPassword("19999999999", "newsecret"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
