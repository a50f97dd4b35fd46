package users

import (
	"context"

	"github.com/dmitrijs2005/gophdiary/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetForUpdate(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, patch models.ProfilePatch) (*models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
