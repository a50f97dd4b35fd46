// Package diaries provides the PostgreSQL-backed store of diary entries.
package diaries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/timex"
)

const diaryColumns = `id, user_id, diary_date, content, mood, weather, images, videos, created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes entry as the single row for (OwnerID, Date). An existing row
// keeps its id and created_at; everything else is replaced. The statement is
// atomic, so concurrent saves of one key never yield two rows.
func (r *PostgresRepository) Upsert(ctx context.Context, entry *models.DiaryEntry) (*models.DiaryEntry, error) {
	images, err := encodeMedia(entry.Images)
	if err != nil {
		return nil, err
	}
	videos, err := encodeMedia(entry.Videos)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO diaries (user_id, diary_date, content, mood, weather, images, videos)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, diary_date)
		DO UPDATE SET
			content = EXCLUDED.content,
			mood = EXCLUDED.mood,
			weather = EXCLUDED.weather,
			images = EXCLUDED.images,
			videos = EXCLUDED.videos,
			updated_at = NOW()
		RETURNING ` + diaryColumns

	row := r.db.QueryRowContext(ctx, query,
		entry.OwnerID, entry.Date, entry.Content, entry.Mood, entry.Weather, images, videos)

	return scanEntry(row)
}

// Get returns the owner's entry for date or common.ErrorNotFound.
func (r *PostgresRepository) Get(ctx context.Context, ownerID, date string) (*models.DiaryEntry, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries
		WHERE user_id = $1 AND diary_date = $2`

	return scanEntry(r.db.QueryRowContext(ctx, query, ownerID, date))
}

// List returns all of the owner's entries, newest date first.
func (r *PostgresRepository) List(ctx context.Context, ownerID string) ([]*models.DiaryEntry, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries
		WHERE user_id = $1
		ORDER BY diary_date DESC`

	return r.queryEntries(ctx, query, ownerID)
}

// ListRange returns entries with from <= date < to, newest first.
func (r *PostgresRepository) ListRange(ctx context.Context, ownerID, from, to string) ([]*models.DiaryEntry, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries
		WHERE user_id = $1 AND diary_date >= $2 AND diary_date < $3
		ORDER BY diary_date DESC`

	return r.queryEntries(ctx, query, ownerID, from, to)
}

// Search returns entries whose content contains keyword, ignoring case.
// Wildcards in keyword match literally.
func (r *PostgresRepository) Search(ctx context.Context, ownerID, keyword string) ([]*models.DiaryEntry, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries
		WHERE user_id = $1 AND content ILIKE $2 ESCAPE '\'
		ORDER BY diary_date DESC`

	return r.queryEntries(ctx, query, ownerID, containsPattern(keyword))
}

// Delete removes the owner's entry for date and returns the media it referenced.
func (r *PostgresRepository) Delete(ctx context.Context, ownerID, date string) (*models.MediaRefs, error) {
	query := `DELETE FROM diaries
		WHERE user_id = $1 AND diary_date = $2
		RETURNING images, videos`

	var images, videos sql.NullString
	err := r.db.QueryRowContext(ctx, query, ownerID, date).Scan(&images, &videos)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	// The row is gone at this point, so undecodable media still yields refs.
	refs := &models.MediaRefs{Images: []string{}, Videos: []string{}}
	var decodeErrs []error
	if v, err := decodeMedia(images); err != nil {
		decodeErrs = append(decodeErrs, err)
	} else {
		refs.Images = v
	}
	if v, err := decodeMedia(videos); err != nil {
		decodeErrs = append(decodeErrs, err)
	} else {
		refs.Videos = v
	}
	if len(decodeErrs) > 0 {
		return refs, fmt.Errorf("%w: %w", ErrCorruptMedia, errors.Join(decodeErrs...))
	}
	return refs, nil
}

// Stats returns the number of entries and the total content length in characters.
func (r *PostgresRepository) Stats(ctx context.Context, ownerID string) (int, int64, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(CHAR_LENGTH(content)), 0) FROM diaries
		WHERE user_id = $1`

	var days int
	var chars int64
	if err := r.db.QueryRowContext(ctx, query, ownerID).Scan(&days, &chars); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return days, chars, nil
}

// Dates returns the owner's entry dates, newest first, as midnight UTC.
func (r *PostgresRepository) Dates(ctx context.Context, ownerID string) ([]time.Time, error) {
	query := `SELECT diary_date FROM diaries
		WHERE user_id = $1
		ORDER BY diary_date DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, timex.CivilDay(d))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) queryEntries(ctx context.Context, query string, args ...any) ([]*models.DiaryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.DiaryEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*models.DiaryEntry, error) {
	var (
		e              models.DiaryEntry
		date           time.Time
		images, videos sql.NullString
	)
	err := s.Scan(&e.ID, &e.OwnerID, &date, &e.Content, &e.Mood, &e.Weather,
		&images, &videos, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	e.Date = timex.FormatDate(date)
	if e.Images, err = decodeMedia(images); err != nil {
		return nil, err
	}
	if e.Videos, err = decodeMedia(videos); err != nil {
		return nil, err
	}
	return &e, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching keyword anywhere.
func containsPattern(keyword string) string {
	return "%" + likeEscaper.Replace(keyword) + "%"
}
