package service

import (
	"context"
	"crypto/rsa"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"societyhub/internal/model"
	"societyhub/internal/repository"
	jwtutil "societyhub/pkg/jwt"
)

const (
	defaultAccessTokenTTL = 12 * time.Hour
	bcryptCost            = 10
)

var (
	ErrAdminExists        = errors.New("admin already exists")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingAuthFields  = errors.New("all fields are required")
)

type AuthService struct {
	adminRepo      repository.AdminRepository
	privateKey     *rsa.PrivateKey
	accessTTL      time.Duration
	bootstrapEmail string
	logger         *zap.Logger
}

type LoginResult struct {
	Admin       *model.Admin
	AccessToken string
}

func NewAuthService(
	adminRepo repository.AdminRepository,
	privateKey *rsa.PrivateKey,
	bootstrapEmail string,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		adminRepo:      adminRepo,
		privateKey:     privateKey,
		accessTTL:      defaultAccessTokenTTL,
		bootstrapEmail: strings.ToLower(strings.TrimSpace(bootstrapEmail)),
		logger:         logger,
	}
}

// Signup registers a new admin. The configured bootstrap email is the
// only signup that receives the superadmin role.
func (s *AuthService) Signup(ctx context.Context, name, email, password, phone string) (*model.Admin, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phone = strings.TrimSpace(phone)
	if name == "" || email == "" || password == "" || phone == "" {
		return nil, ErrMissingAuthFields
	}

	if _, err := s.adminRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrAdminExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	role := model.AdminRoleAdmin
	if email == s.bootstrapEmail {
		role = model.AdminRoleSuperadmin
	}

	admin := &model.Admin{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        phone,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAdminExists
		}
		return nil, err
	}

	s.logger.Info("admin registered", zap.String("email", admin.Email), zap.String("role", string(admin.Role)))
	return admin, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	result := &LoginResult{Admin: admin}
	if s.privateKey != nil {
		claims := jwtutil.NewClaims(admin.ID.String(), admin.Email, string(admin.Role), s.accessTTL)
		result.AccessToken, err = jwtutil.GenerateAccessToken(claims, s.privateKey)
		if err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *AuthService) Profile(ctx context.Context, email string) (*model.Admin, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}
	return admin, nil
}

// UpdateProfile overwrites only the fields that were supplied.
func (s *AuthService) UpdateProfile(ctx context.Context, email string, name, phone, image *string) (*model.Admin, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, err
	}

	if name != nil && strings.TrimSpace(*name) != "" {
		admin.Name = strings.TrimSpace(*name)
	}
	if phone != nil && strings.TrimSpace(*phone) != "" {
		admin.Phone = strings.TrimSpace(*phone)
	}
	if image != nil && *image != "" {
		admin.Image = image
	}

	if err := s.adminRepo.Update(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// EnsureSuperadmin is an idempotent seed: it creates the bootstrap
// superadmin account if and only if no admin exists for the email.
func (s *AuthService) EnsureSuperadmin(ctx context.Context, name, password, phone string) error {
	if s.bootstrapEmail == "" {
		return nil
	}

	_, err := s.adminRepo.FindByEmail(ctx, s.bootstrapEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}

	admin := &model.Admin{
		ID:           uuid.New(),
		Name:         name,
		Email:        s.bootstrapEmail,
		PasswordHash: string(hash),
		Phone:        phone,
		Role:         model.AdminRoleSuperadmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.adminRepo.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("superadmin seeded", zap.String("email", s.bootstrapEmail))
	return nil
}
