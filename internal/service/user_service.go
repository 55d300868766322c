package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nabirdeveloper/trusted-brother/internal/apperr"
	"github.com/nabirdeveloper/trusted-brother/internal/auth"
	"github.com/nabirdeveloper/trusted-brother/internal/config"
	"github.com/nabirdeveloper/trusted-brother/internal/datamodels/user"
)

const minPasswordLen = 6

// Registration 注册参数；Role 为空时为普通用户
type Registration struct {
	Name     string
	Email    string
	Password string
	Role     string
}

type UserService struct {
	repo   user.Repository
	hasher *auth.PasswordHasher
	jwt    *config.JWTConfig
}

func NewUserService(repo user.Repository, hasher *auth.PasswordHasher, jwt *config.JWTConfig) *UserService {
	if hasher == nil {
		hasher = auth.NewPasswordHasher(auth.DefaultBcryptCost)
	}
	return &UserService{repo: repo, hasher: hasher, jwt: jwt}
}

// Register 校验后创建用户，邮箱已被使用时返回冲突错误
func (s *UserService) Register(ctx context.Context, r Registration) (*user.User, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Name == "" || r.Email == "" || r.Password == "" {
		return nil, apperr.Validation("Name, email and password are required")
	}
	if !strings.Contains(r.Email, "@") {
		return nil, apperr.Validation("Invalid email address")
	}
	if len(r.Password) < minPasswordLen {
		return nil, apperr.Validation("Password must be at least %d characters", minPasswordLen)
	}
	role := user.RoleUser
	if r.Role != "" {
		role = user.Role(r.Role)
		if !role.Valid() {
			return nil, apperr.Validation("Invalid role: %s", r.Role)
		}
	}

	if _, err := s.repo.GetByEmail(ctx, r.Email); err == nil {
		return nil, apperr.Conflict("User with this email already exists")
	} else if !apperr.IsNotFound(err) {
		return nil, err
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return nil, apperr.Persistence(err, "failed to hash password")
	}
	u := &user.User{
		ID:       uuid.NewString(),
		Name:     r.Name,
		Email:    r.Email,
		Password: hash,
		Role:     role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if apperr.IsConflict(err) {
			return nil, apperr.Conflict("User with this email already exists")
		}
		return nil, err
	}
	zap.L().Info("用户已注册", zap.String("id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// Login 校验密码并签发 JWT；邮箱不存在与密码错误返回同一条消息
func (s *UserService) Login(ctx context.Context, email, password string) (string, *user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", nil, apperr.Validation("Email and password are required")
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if apperr.IsNotFound(err) {
		return "", nil, apperr.Validation("Invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if !s.hasher.Verify(password, u.Password) {
		return "", nil, apperr.Validation("Invalid email or password")
	}
	token, err := auth.GenerateToken(s.jwt, u.ID, u.Role)
	if err != nil {
		return "", nil, apperr.Persistence(err, "failed to sign token")
	}
	return token, u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// ListCustomers 返回所有普通用户，密码字段不会被序列化
func (s *UserService) ListCustomers(ctx context.Context) ([]*user.User, error) {
	list, err := s.repo.ListByRole(ctx, user.RoleUser)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*user.User{}
	}
	return list, nil
}
