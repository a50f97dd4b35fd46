package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/dmitrijs2005/gophdiary/internal/dbx"
	"github.com/dmitrijs2005/gophdiary/internal/server/models"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/diaries"
	"github.com/dmitrijs2005/gophdiary/internal/server/repositories/users"
	"github.com/dmitrijs2005/gophdiary/internal/server/storage"
)

// -------- repository manager --------

type fakeManager struct {
	users   users.Repository
	diaries diaries.Repository
	// diaryHandles records the handle every Diaries call received.
	diaryHandles []dbx.DBTX
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository              { return m.users }

func (m *fakeManager) Diaries(db dbx.DBTX) diaries.Repository {
	m.diaryHandles = append(m.diaryHandles, db)
	return m.diaries
}

// -------- users --------

type fakeUsersRepo struct {
	byID   map[string]*models.User
	nextID int
	err    error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byID: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, existing := range f.byID {
		if strings.EqualFold(existing.UserName, u.UserName) {
			return nil, common.ErrorAlreadyExists
		}
	}
	f.nextID++
	u.ID = fmt.Sprintf("u-%d", f.nextID)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.byID[u.ID] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if strings.EqualFold(u.UserName, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) GetForUpdate(ctx context.Context, id string) (*models.User, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeUsersRepo) UpdateProfile(_ context.Context, id string, p models.ProfilePatch) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if p.Nickname != nil {
		u.Nickname = *p.Nickname
	}
	if p.Email != nil {
		u.Email = emptyToNil(p.Email)
	}
	if p.Phone != nil {
		u.Phone = emptyToNil(p.Phone)
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) UpdatePassword(_ context.Context, id, hash string) error {
	if f.err != nil {
		return f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = hash
	return nil
}

// -------- diaries --------

type fakeDiariesRepo struct {
	rows      map[string]*models.DiaryEntry
	nextID    int
	err       error
	rangeArgs []string
	// corruptVideos makes Delete report an undecodable videos column.
	corruptVideos bool
}

func newFakeDiariesRepo() *fakeDiariesRepo {
	return &fakeDiariesRepo{rows: map[string]*models.DiaryEntry{}}
}

func diaryKey(owner, date string) string { return owner + "|" + date }

func (f *fakeDiariesRepo) Upsert(_ context.Context, e *models.DiaryEntry) (*models.DiaryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	k := diaryKey(e.OwnerID, e.Date)
	now := time.Now()
	if existing, ok := f.rows[k]; ok {
		e.ID, e.CreatedAt = existing.ID, existing.CreatedAt
	} else {
		f.nextID++
		e.ID = fmt.Sprintf("d-%d", f.nextID)
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	cp := *e
	f.rows[k] = &cp
	return e, nil
}

func (f *fakeDiariesRepo) Get(_ context.Context, owner, date string) (*models.DiaryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.rows[diaryKey(owner, date)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeDiariesRepo) filter(owner string, keep func(*models.DiaryEntry) bool) []*models.DiaryEntry {
	out := make([]*models.DiaryEntry, 0)
	for _, e := range f.rows {
		if e.OwnerID == owner && keep(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

func (f *fakeDiariesRepo) List(_ context.Context, owner string) ([]*models.DiaryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.filter(owner, func(*models.DiaryEntry) bool { return true }), nil
}

func (f *fakeDiariesRepo) ListRange(_ context.Context, owner, from, to string) ([]*models.DiaryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rangeArgs = []string{from, to}
	return f.filter(owner, func(e *models.DiaryEntry) bool { return e.Date >= from && e.Date < to }), nil
}

func (f *fakeDiariesRepo) Search(_ context.Context, owner, keyword string) ([]*models.DiaryEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	kw := strings.ToLower(keyword)
	return f.filter(owner, func(e *models.DiaryEntry) bool {
		return strings.Contains(strings.ToLower(e.Content), kw)
	}), nil
}

func (f *fakeDiariesRepo) Delete(_ context.Context, owner, date string) (*models.MediaRefs, error) {
	if f.err != nil {
		return nil, f.err
	}
	k := diaryKey(owner, date)
	e, ok := f.rows[k]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.rows, k)
	if f.corruptVideos {
		return &models.MediaRefs{Images: e.Images, Videos: []string{}},
			fmt.Errorf("%w: decode media: invalid character", diaries.ErrCorruptMedia)
	}
	return &models.MediaRefs{Images: e.Images, Videos: e.Videos}, nil
}

func (f *fakeDiariesRepo) Stats(_ context.Context, owner string) (int, int64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	var days int
	var chars int64
	for _, e := range f.filter(owner, func(*models.DiaryEntry) bool { return true }) {
		days++
		chars += int64(len([]rune(e.Content)))
	}
	return days, chars, nil
}

func (f *fakeDiariesRepo) Dates(_ context.Context, owner string) ([]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []time.Time
	for _, e := range f.filter(owner, func(*models.DiaryEntry) bool { return true }) {
		d, _ := time.Parse(common.DateLayout, e.Date)
		out = append(out, d)
	}
	return out, nil
}

// -------- media --------

type fakeReleaser struct {
	owners   []string
	released [][]string
}

func (r *fakeReleaser) Release(_ context.Context, ownerID string, urls []string) {
	r.owners = append(r.owners, ownerID)
	r.released = append(r.released, urls)
}

type fakeStore struct {
	mu        sync.Mutex
	puts      []string
	bodies    []string
	deleted   [][]string
	putErr    error
	putErrAt  int
	deleteErr error
	block     chan struct{}
}

func (s *fakeStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil && len(s.puts) == s.putErrAt {
		return nil, s.putErr
	}
	b, _ := io.ReadAll(body)
	s.puts = append(s.puts, key)
	s.bodies = append(s.bodies, string(b))
	return &storage.Object{URL: storage.PublicURL("http://minio:9000", "diary", key), Name: key}, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	return s.DeleteMany(context.Background(), []string{key})
}

func (s *fakeStore) DeleteMany(_ context.Context, keys []string) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, keys)
	return s.deleteErr
}

func (s *fakeStore) deletedBatches() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.deleted...)
}
