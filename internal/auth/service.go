package auth

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"webmail/backend/internal/auth/jwt"
	"webmail/backend/internal/domain"
	"webmail/backend/internal/storage/jsonfile"
)

var (
	// ErrInvalidCredentials 邮箱或密码不正确
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserExists 用户已注册
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidEmail 邮箱格式不合法
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrWeakPassword 密码过短
	ErrWeakPassword = errors.New("password must be at least 8 characters")
)

// Service 账号注册与登录，账户信息保存在用户目录的 info.json
type Service struct {
	store *jsonfile.Store
	jwt   *jwt.Manager
	log   *zap.Logger
}

// NewService 创建认证服务
func NewService(store *jsonfile.Store, manager *jwt.Manager, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, jwt: manager, log: log}
}

// SignupInput 注册请求
type SignupInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
	BirthDate   string `json:"birthDate"`
}

// LoginInput 登录请求
type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResult 认证结果：用户标识加令牌对
type AuthResult struct {
	UserID string         `json:"userId"`
	Email  string         `json:"email"`
	Tokens *jwt.TokenPair `json:"tokens"`
}

// Signup 注册新用户：初始化邮箱目录并写入账户信息。
// 用户 ID 取邮箱 @ 前的本地部分，同时也是存储目录名。
func (s *Service) Signup(input SignupInput) (*AuthResult, error) {
	userID, err := userIDFromEmail(input.Email)
	if err != nil {
		return nil, err
	}
	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}
	if s.store.UserExists(userID) {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.store.ProvisionUser(userID); err != nil {
		return nil, fmt.Errorf("failed to provision mailbox: %w", err)
	}

	info := domain.UserInfo{
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Email:       input.Email,
		Password:    string(hash),
		PhoneNumber: input.PhoneNumber,
		BirthDate:   input.BirthDate,
	}
	if err := s.store.WriteDoc(userID, "info", &info); err != nil {
		return nil, fmt.Errorf("failed to save user info: %w", err)
	}

	tokens, err := s.jwt.GenerateTokenPair(userID, input.Email)
	if err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user", userID))
	return &AuthResult{UserID: userID, Email: input.Email, Tokens: tokens}, nil
}

// Login 校验密码并颁发令牌对
func (s *Service) Login(input LoginInput) (*AuthResult, error) {
	userID, err := userIDFromEmail(input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !s.store.UserExists(userID) {
		return nil, ErrInvalidCredentials
	}

	info := domain.UserInfo{}
	if err := s.store.ReadDoc(userID, "info", &info); err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(info.Password), []byte(input.Password)) != nil {
		s.log.Warn("login failed", zap.String("user", userID))
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.jwt.GenerateTokenPair(userID, info.Email)
	if err != nil {
		return nil, err
	}

	s.log.Info("user logged in", zap.String("user", userID))
	return &AuthResult{UserID: userID, Email: info.Email, Tokens: tokens}, nil
}

// Refresh 用刷新令牌换新的访问令牌
func (s *Service) Refresh(refreshToken string) (string, error) {
	return s.jwt.RefreshAccessToken(refreshToken)
}

// userIDFromEmail 取邮箱本地部分作为用户 ID。注册/登录必须给出完整地址，
// 解析规则与投递侧共用，保证同一地址总落到同一个存储目录。
func userIDFromEmail(email string) (string, error) {
	if !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	userID, err := domain.UserIDFromAddress(email)
	if err != nil {
		return "", ErrInvalidEmail
	}
	return userID, nil
}
