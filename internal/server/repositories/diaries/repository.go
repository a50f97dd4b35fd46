package diaries

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/server/models"
)

// ErrCorruptMedia is returned together with partial refs by Delete when a
// media column cannot be decoded. The row has been deleted regardless.
var ErrCorruptMedia = errors.New("corrupt media column")

// Repository stores diary entries keyed by (owner, date). Every method is
// scoped to ownerID; rows of other owners are invisible.
type Repository interface {
	Upsert(ctx context.Context, entry *models.DiaryEntry) (*models.DiaryEntry, error)
	Get(ctx context.Context, ownerID, date string) (*models.DiaryEntry, error)
	List(ctx context.Context, ownerID string) ([]*models.DiaryEntry, error)
	ListRange(ctx context.Context, ownerID, from, to string) ([]*models.DiaryEntry, error)
	Search(ctx context.Context, ownerID, keyword string) ([]*models.DiaryEntry, error)
	Delete(ctx context.Context, ownerID, date string) (*models.MediaRefs, error)
	Stats(ctx context.Context, ownerID string) (days int, chars int64, err error)
	Dates(ctx context.Context, ownerID string) ([]time.Time, error)
}
