package service

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"MedGuard/internal/apperr"
	"MedGuard/internal/auth"
	"MedGuard/internal/model"
	"MedGuard/internal/repository"

	"github.com/sirupsen/logrus"
)

const (
	minPasswordLen     = 6
	msgBadCredentials  = "用户名或密码错误"
	msgUserUnavailable = "用户不存在或已被禁用"
)

// RegisterRequest 注册参数
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	RealName string `json:"realName"`
	Phone    string `json:"phone"`
	IDCard   string `json:"idCard"`
}

// UserProfile 返回给前端的用户信息
type UserProfile struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	RealName string `json:"realName"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	IDCard   string `json:"idCard"`
}

// LoginResult 登录结果
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresIn int64       `json:"expiresIn"` // 秒
	User      UserProfile `json:"user"`
}

// AuthService 注册、登录、令牌校验与默认账户初始化
type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	logger *logrus.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService 创建 AuthService
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, logger *logrus.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

func profileOf(u *model.User) UserProfile {
	return UserProfile{ID: u.ID, Username: u.Username, RealName: u.RealName, Role: u.Role, Phone: u.Phone, IDCard: u.IDCard}
}

// Register 注册普通用户，返回新用户ID
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (uint64, error) {
	if blank(req.Username) || req.Password == "" {
		return 0, apperr.Validation("用户名和密码不能为空")
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		return 0, apperr.Validation("密码长度不能少于6位")
	}

	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return 0, apperr.Conflict("用户名已存在")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return 0, err
	}
	u := &model.User{
		Username: req.Username,
		Password: hash,
		RealName: req.RealName,
		Phone:    req.Phone,
		IDCard:   req.IDCard,
		Role:     model.RoleUser,
		Status:   1,
	}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册时由唯一索引兜底
		if apperr.Is(err, apperr.KindConflict) {
			return 0, apperr.Conflict("用户名已存在")
		}
		return 0, err
	}
	s.logger.WithField("username", u.Username).Info("新用户注册")
	return u.ID, nil
}

// Login 校验账号密码并签发令牌。用户不存在、被禁用、密码错误返回同一提示
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if blank(username) || password == "" {
		return nil, apperr.Validation("用户名和密码不能为空")
	}
	u, err := s.users.GetActiveByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if u == nil {
		// 与真实校验耗时保持一致
		_, _ = auth.VerifyPassword(password, s.placeholderHash())
		return nil, apperr.Auth(msgBadCredentials)
	}
	ok, err := auth.VerifyPassword(password, u.Password)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", u.ID).Warn("密码哈希无法解析")
	}
	if !ok {
		return nil, apperr.Auth(msgBadCredentials)
	}

	token, err := s.tokens.Issue(u.ID, u.Username, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresIn: int64(s.tokens.Expire().Seconds()), User: profileOf(u)}, nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("placeholder-password")
	})
	return s.dummyHash
}

// VerifyToken 校验令牌，返回其中的声明
func (s *AuthService) VerifyToken(token string) (*auth.Claims, error) {
	if token == "" {
		return nil, apperr.Auth("未授权，请先登录")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			return nil, apperr.Auth(auth.ErrInvalidToken.Error())
		}
		return nil, apperr.Auth(auth.ErrInvalidToken.Error()).Wrap(err)
	}
	return claims, nil
}

// Me 当前登录用户信息
func (s *AuthService) Me(ctx context.Context, id uint64) (*UserProfile, error) {
	u, err := s.users.GetActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.Auth(msgUserUnavailable)
	}
	p := profileOf(u)
	return &p, nil
}

// defaultAccount 默认账户
type defaultAccount struct {
	username, password, realName, role string
}

var (
	defaultAdmin = defaultAccount{"admin", "admin123", "系统管理员", model.RoleAdmin}
	defaultUser  = defaultAccount{"user", "user123", "普通用户", model.RoleUser}
)

// Bootstrap 启动时初始化默认账户：
// 用户表为空时创建管理员与普通用户；非空但没有普通用户时补一个普通用户
func (s *AuthService) Bootstrap(ctx context.Context) error {
	total, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if total == 0 {
		for _, acc := range []defaultAccount{defaultAdmin, defaultUser} {
			if err := s.createDefault(ctx, acc); err != nil {
				return err
			}
		}
		return nil
	}

	n, err := s.users.CountByRole(ctx, model.RoleUser)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	taken, err := s.users.GetByUsername(ctx, defaultUser.username)
	if err != nil {
		return err
	}
	if taken != nil {
		s.logger.WithField("role", taken.Role).Warn("用户名 user 已被占用，跳过默认普通用户创建")
		return nil
	}
	return s.createDefault(ctx, defaultUser)
}

func (s *AuthService) createDefault(ctx context.Context, acc defaultAccount) error {
	hash, err := auth.HashPassword(acc.password)
	if err != nil {
		return err
	}
	u := &model.User{Username: acc.username, Password: hash, RealName: acc.realName, Role: acc.role, Status: 1}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"username": acc.username, "role": acc.role}).Info("默认账户已创建")
	return nil
}
