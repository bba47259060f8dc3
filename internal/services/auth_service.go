package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/terraincognita07/careline/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	MinPasswordLength     = 6
	wechatOpenIDPrefix    = "wx_"
	defaultWechatNickname = "微信用户"
)

var (
	ErrWeakPassword = errors.New("weak password")
	ErrInvalidPhone = errors.New("invalid phone")
)

type AuthUserRepository interface {
	FindByID(userID uint) (models.User, error)
	FindByPhone(phone string) (models.User, error)
	FindByOpenID(openID string) (models.User, bool, error)
	ExistsByPhone(phone string) (bool, error)
	Create(user *models.User) error
	UpdatePassword(userID uint, passwordHash string) error
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// DefaultNickname is "用户" followed by the phone's last four digits.
func DefaultNickname(phone string) string {
	runes := []rune(phone)
	if len(runes) > 4 {
		runes = runes[len(runes)-4:]
	}
	return "用户" + string(runes)
}

func (service *AuthService) Register(phone string, password string, nickname string) (models.User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return models.User{}, ErrInvalidPhone
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByPhone(phone)
	if err != nil {
		return models.User{}, fmt.Errorf("check phone: %w", err)
	}
	if exists {
		return models.User{}, ErrPhoneTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		nickname = DefaultNickname(phone)
	}

	user := models.User{Phone: &phone, Nickname: nickname, PasswordHash: hash}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (service *AuthService) Login(phone string, password string) (models.User, error) {
	user, err := service.users.FindByPhone(strings.TrimSpace(phone))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// WechatLogin finds or creates the user bound to a mini-program login code.
// The code is used as the openid directly; there is no code2session exchange.
func (service *AuthService) WechatLogin(code string) (models.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.User{}, ErrInvalidCredentials
	}
	openID := wechatOpenIDPrefix + code

	user, found, err := service.users.FindByOpenID(openID)
	if err != nil {
		return models.User{}, fmt.Errorf("load wechat user: %w", err)
	}
	if found {
		return user, nil
	}

	user = models.User{OpenID: &openID, Nickname: defaultWechatNickname}
	if err := service.users.Create(&user); err != nil {
		return models.User{}, fmt.Errorf("create wechat user: %w", err)
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	return service.users.FindByID(userID)
}

// ResetPassword replaces the password of the user registered with phone.
func (service *AuthService) ResetPassword(phone string, password string) (models.User, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}
	user, err := service.users.FindByPhone(strings.TrimSpace(phone))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(user.ID, hash); err != nil {
		return models.User{}, fmt.Errorf("update password: %w", err)
	}
	user.PasswordHash = hash
	return user, nil
}
