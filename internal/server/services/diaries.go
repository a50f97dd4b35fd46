package services

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/logging"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/diaries"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/timex"
)

// SaveInput is the payload of a diary save. Blank mood and weather fall back
// to the defaults.
type SaveInput struct {
	Date    string   `json:"date" validate:"required"`
	Content string   `json:"content" validate:"required"`
	Mood    string   `json:"mood"`
	Weather string   `json:"weather"`
	Images  []string `json:"images"`
	Videos  []string `json:"videos"`
}

var saveMessages = map[string]string{
	"required": "date and content are required",
}

// MonthFilter restricts a listing to one calendar month.
type MonthFilter struct {
	Year  int
	Month time.Month
}

// ParseMonthFilter reads the optional year and month query values. Any value
// given must be valid; the filter applies only when both are given.
func ParseMonthFilter(year, month string) (*MonthFilter, error) {
	var f MonthFilter

	if year != "" {
		y, err := strconv.Atoi(year)
		if err != nil || y < 1 || y > 9999 {
			return nil, common.Validation("year must be a number between 1 and 9999")
		}
		f.Year = y
	}
	if month != "" {
		m, err := strconv.Atoi(month)
		if err != nil || m < 1 || m > 12 {
			return nil, common.Validation("month must be a number between 1 and 12")
		}
		f.Month = time.Month(m)
	}

	if year == "" || month == "" {
		return nil, nil
	}
	return &f, nil
}

// mediaReleaser lets go of media that no entry references anymore.
type mediaReleaser interface {
	Release(ctx context.Context, ownerID string, urls []string)
}

// DiaryService is the per-owner diary store. Every call is scoped to the
// owner taken from a validated token.
type DiaryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	media       mediaReleaser
	logger      logging.Logger
}

func NewDiaryService(db *sql.DB, m repomanager.RepositoryManager, media mediaReleaser, logger logging.Logger) *DiaryService {
	return &DiaryService{db: db, repomanager: m, media: media, logger: logger.With("module", "diary_service")}
}

// Save creates or replaces the owner's entry for in.Date in one statement.
func (s *DiaryService) Save(ctx context.Context, ownerID string, in SaveInput) (*models.DiaryEntry, error) {
	if err := validateStruct(in, saveMessages); err != nil {
		return nil, err
	}
	date, err := normalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	entry := &models.DiaryEntry{
		OwnerID: ownerID,
		Date:    date,
		Content: in.Content,
		Mood:    orDefault(in.Mood, common.DefaultMood),
		Weather: orDefault(in.Weather, common.DefaultWeather),
		Images:  nonNil(in.Images),
		Videos:  nonNil(in.Videos),
	}

	repo := s.repomanager.Diaries(s.db)
	saved, err := repo.Upsert(ctx, entry)
	if err != nil {
		return nil, internalError("save diary", err)
	}
	return saved, nil
}

func (s *DiaryService) Get(ctx context.Context, ownerID, date string) (*models.DiaryEntry, error) {
	date, err := normalizeDate(date)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Diaries(s.db)
	entry, err := repo.Get(ctx, ownerID, date)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound("diary not found")
		}
		return nil, internalError("get diary", err)
	}
	return entry, nil
}

// List returns the owner's entries, newest first, optionally for one month.
func (s *DiaryService) List(ctx context.Context, ownerID string, filter *MonthFilter) ([]*models.DiaryEntry, error) {
	repo := s.repomanager.Diaries(s.db)

	var (
		entries []*models.DiaryEntry
		err     error
	)
	if filter != nil {
		from, to := timex.MonthRange(filter.Year, filter.Month)
		entries, err = repo.ListRange(ctx, ownerID, timex.FormatDate(from), timex.FormatDate(to))
	} else {
		entries, err = repo.List(ctx, ownerID)
	}
	if err != nil {
		return nil, internalError("list diaries", err)
	}
	return entries, nil
}

// Search finds entries whose content contains keyword, ignoring case.
func (s *DiaryService) Search(ctx context.Context, ownerID, keyword string) ([]*models.DiaryEntry, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, common.Validation("keyword is required")
	}

	repo := s.repomanager.Diaries(s.db)
	entries, err := repo.Search(ctx, ownerID, keyword)
	if err != nil {
		return nil, internalError("search diaries", err)
	}
	return entries, nil
}

// Delete removes the entry and hands its media to the releaser. Media
// cleanup never affects the result.
func (s *DiaryService) Delete(ctx context.Context, ownerID, date string) error {
	date, err := normalizeDate(date)
	if err != nil {
		return err
	}

	repo := s.repomanager.Diaries(s.db)
	refs, err := repo.Delete(ctx, ownerID, date)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.NotFound("diary not found")
	case errors.Is(err, diaries.ErrCorruptMedia):
		s.logger.Warn(ctx, "diary deleted with unreadable media", "owner_id", ownerID, "date", date, "error", err)
	case err != nil:
		return internalError("delete diary", err)
	}

	if refs == nil || s.media == nil {
		return nil
	}
	if urls := refs.All(); len(urls) > 0 {
		s.media.Release(ctx, ownerID, urls)
	}
	return nil
}

func normalizeDate(s string) (string, error) {
	d, err := timex.ParseDate(s)
	if err != nil {
		return "", common.Validation("date must be YYYY-MM-DD")
	}
	return timex.FormatDate(d), nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
