package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/server/config"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophdiary/internal/timex"
)

// StatsService computes per-owner diary statistics. "Today" is taken from
// the clock in the configured reference timezone.
type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	loc         *time.Location
	now         func() time.Time
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *StatsService {
	return &StatsService{db: db, repomanager: m, loc: cfg.Location(), now: time.Now}
}

// Stats reads the aggregate and the streak dates in one read-only
// transaction so both describe the same set of entries.
func (s *StatsService) Stats(ctx context.Context, ownerID string) (*models.Stats, error) {
	var (
		days  int
		chars int64
		dates []time.Time
	)

	opts := &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	err := dbx.WithTx(ctx, s.db, opts, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Diaries(tx)

		var err error
		if days, chars, err = repo.Stats(ctx, ownerID); err != nil {
			return internalError("diary stats", err)
		}
		if dates, err = repo.Dates(ctx, ownerID); err != nil {
			return internalError("diary dates", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorInternal) {
			return nil, err
		}
		return nil, internalError("diary stats", err)
	}

	return &models.Stats{
		TotalDays:      days,
		TotalWords:     chars,
		ContinuousDays: ContinuousDays(dates, timex.Today(s.now(), s.loc)),
	}, nil
}

// ContinuousDays counts the run of consecutive days ending at the newest date.
// dates must be distinct and sorted newest first. The run is 0 when the
// newest date is more than one day before today.
func ContinuousDays(dates []time.Time, today time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	if timex.DaysBetween(dates[0], today) > 1 {
		return 0
	}

	streak := 1
	for i := 1; i < len(dates); i++ {
		if timex.DaysBetween(dates[i], dates[i-1]) != 1 {
			break
		}
		streak++
	}
	return streak
}
