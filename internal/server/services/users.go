// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login, token validation and the
// owner's profile and password.
package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/cryptox"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/server/auth"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/repomanager"
)

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Username string  `json:"username" validate:"required,alphanum,min=6,max=20"`
	Password string  `json:"password" validate:"required,min=6"`
	Nickname string  `json:"nickname" validate:"required,max=50"`
	Email    *string `json:"email" validate:"omitempty,max=100"`
	Phone    *string `json:"phone" validate:"omitempty,max=20"`
}

var registerMessages = map[string]string{
	"required":          "username, password and nickname are required",
	"username.alphanum": "username must be 6-20 letters or digits",
	"username.min":      "username must be 6-20 letters or digits",
	"username.max":      "username must be 6-20 letters or digits",
	"password.min":      "password must be at least 6 characters",
	"nickname.max":      "nickname is too long",
	"email.max":         "email is too long",
	"phone.max":         "phone is too long",
}

var profileMessages = map[string]string{
	"nickname.min": "nickname cannot be empty",
	"max":          "profile field is too long",
}

const (
	minPasswordLen = 6
	// bcrypt rejects input longer than 72 bytes.
	maxPasswordBytes = 72
)

// checkPassword applies the length rules shared by registration and password
// change: at least 6 characters and at most 72 bytes.
func checkPassword(password, label string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return common.Validation(label + " must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return common.Validation(label + " must be at most 72 bytes")
	}
	return nil
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token   string          `json:"token"`
	Profile *models.Profile `json:"user"`
}

// UserService provides authentication-related operations:
// - Register / Login: create users, verify credentials, mint tokens
// - ValidateToken: turn a bearer token into an Identity
// - GetProfile / UpdateProfile / ChangePassword: owner self-service
type UserService struct {
	db                          *sql.DB
	repomanager                 repomanager.RepositoryManager
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                          db,
		repomanager:                 m,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  cfg.BcryptCost,
	}
}

// Register creates a user and signs them in. A taken username is a conflict.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateStruct(in, registerMessages); err != nil {
		return nil, err
	}
	if err := checkPassword(in.Password, "password"); err != nil {
		return nil, err
	}

	hash, err := cryptox.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, internalError("hash password", err)
	}

	user := &models.User{
		UserName:     in.Username,
		PasswordHash: hash,
		Nickname:     in.Nickname,
		Email:        emptyToNil(in.Email),
		Phone:        emptyToNil(in.Phone),
		Avatar:       common.DefaultAvatar,
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("username already exists")
		}
		return nil, internalError("create user", err)
	}

	return s.issue(user)
}

// Login checks credentials. Unknown users and wrong passwords are distinct
// unauthorized errors.
func (s *UserService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	if username == "" || password == "" {
		return nil, common.Validation("username and password are required")
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrAccountNotFound
		}
		return nil, internalError("get user", err)
	}

	if err := cryptox.ComparePassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, cryptox.ErrMismatch) {
			return nil, common.ErrWrongPassword
		}
		return nil, internalError("compare password", err)
	}

	return s.issue(user)
}

// ValidateToken verifies a bearer token without touching storage.
func (s *UserService) ValidateToken(token string) (*models.Identity, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

func (s *UserService) GetProfile(ctx context.Context, ownerID string) (*models.Profile, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("user not found")
		}
		return nil, internalError("get user", err)
	}
	return user.Profile(), nil
}

// UpdateProfile applies the non-nil fields of patch and returns the result.
// Empty email or phone clear the stored value.
func (s *UserService) UpdateProfile(ctx context.Context, ownerID string, patch models.ProfilePatch) (*models.Profile, error) {
	if patch.Empty() {
		return nil, common.Validation("nothing to update")
	}
	if patch.Nickname != nil {
		trimmed := strings.TrimSpace(*patch.Nickname)
		patch.Nickname = &trimmed
	}
	if err := validateStruct(patch, profileMessages); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.UpdateProfile(ctx, ownerID, patch)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("user not found")
		}
		return nil, internalError("update profile", err)
	}
	return user.Profile(), nil
}

// ChangePassword replaces the hash after checking oldPassword. The row is
// locked for the check and the update.
func (s *UserService) ChangePassword(ctx context.Context, ownerID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return common.Validation("old and new password are required")
	}
	if err := checkPassword(newPassword, "new password"); err != nil {
		return err
	}

	newHash, err := cryptox.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return internalError("hash password", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetForUpdate(ctx, ownerID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.NotFound("user not found")
			}
			return internalError("lock user", err)
		}

		if err := cryptox.ComparePassword(user.PasswordHash, oldPassword); err != nil {
			if errors.Is(err, cryptox.ErrMismatch) {
				return common.ErrWrongOldPassword
			}
			return internalError("compare password", err)
		}

		if err := repo.UpdatePassword(ctx, ownerID, newHash); err != nil {
			return internalError("update password", err)
		}
		return nil
	})

	var domainErr *common.Error
	if err != nil && !errors.As(err, &domainErr) && !errors.Is(err, common.ErrorInternal) {
		return internalError("change password", err)
	}
	return err
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(user.ID, user.UserName, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, internalError("sign token", err)
	}
	return &AuthResult{Token: token, Profile: user.Profile()}, nil
}

func emptyToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
