package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lborres/studyplan/core"
)

var _ core.StorageAdapter = (*FakeStorage)(nil)

// FakeStorage is a test-only in-memory core.StorageAdapter. Set Fail[method]
// to make that method return the error; Calls counts invocations.
type FakeStorage struct {
	mu sync.Mutex

	Fail  map[string]error
	Calls map[string]int

	Users    map[int64]*core.User
	Hashes   map[int64]string
	Sessions map[string]*core.Session
	Subjects []core.Subject
	Topics   []core.Topic
	Plans    map[int64][]core.PlanRow

	nextUserID int64
	nextRowID  int64
}

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		Fail:     make(map[string]error),
		Calls:    make(map[string]int),
		Users:    make(map[int64]*core.User),
		Hashes:   make(map[int64]string),
		Sessions: make(map[string]*core.Session),
		Plans:    make(map[int64][]core.PlanRow),
	}
}

// call records the invocation and returns the injected error. f.mu must be held.
func (f *FakeStorage) call(method string) error {
	f.Calls[method]++
	return f.Fail[method]
}

// SessionStorage

func (f *FakeStorage) CreateSession(_ context.Context, s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateSession"); err != nil {
		return err
	}
	cp := *s
	f.Sessions[s.TokenHash] = &cp
	return nil
}

func (f *FakeStorage) GetSessionData(_ context.Context, tokenHash string) (*core.SessionData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetSessionData"); err != nil {
		return nil, err
	}
	s, ok := f.Sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	u, ok := f.Users[s.UserID]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	cp := *s
	return &core.SessionData{
		Identity: &core.Identity{ID: u.ID, Username: u.Username, Email: u.Email},
		Session:  &cp,
	}, nil
}

func (f *FakeStorage) DeleteSessionByHash(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteSessionByHash"); err != nil {
		return err
	}
	delete(f.Sessions, tokenHash)
	return nil
}

func (f *FakeStorage) DeleteUserSessions(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteUserSessions"); err != nil {
		return 0, err
	}
	n := 0
	for k, s := range f.Sessions {
		if s.UserID == userID {
			delete(f.Sessions, k)
			n++
		}
	}
	return n, nil
}

func (f *FakeStorage) DeleteExpiredSessions(_ context.Context, now time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeleteExpiredSessions"); err != nil {
		return 0, err
	}
	n := 0
	for k, s := range f.Sessions {
		if !now.Before(s.ExpiresAt) {
			delete(f.Sessions, k)
			n++
		}
	}
	return n, nil
}

func (f *FakeStorage) SessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Sessions)
}

// UserStorage

func (f *FakeStorage) UsernameExists(_ context.Context, username string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("UsernameExists"); err != nil {
		return false, err
	}
	for _, u := range f.Users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeStorage) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("EmailExists"); err != nil {
		return false, err
	}
	for _, u := range f.Users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeStorage) CreateUser(_ context.Context, u *core.User, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("CreateUser"); err != nil {
		return err
	}
	f.nextUserID++
	now := time.Now()
	u.ID, u.CreatedAt, u.UpdatedAt = f.nextUserID, now, now
	cp := *u
	f.Users[u.ID] = &cp
	f.Hashes[u.ID] = passwordHash
	return nil
}

func (f *FakeStorage) GetCredentialsByUsername(_ context.Context, username string) (*core.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetCredentialsByUsername"); err != nil {
		return nil, err
	}
	for _, u := range f.Users {
		if u.Username == username {
			return &core.Credentials{
				UserID:       u.ID,
				Username:     u.Username,
				Email:        u.Email,
				PasswordHash: f.Hashes[u.ID],
				Enabled:      u.Enabled,
			}, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorage) GetUserByID(_ context.Context, id int64) (*core.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("GetUserByID"); err != nil {
		return nil, err
	}
	u, ok := f.Users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *FakeStorage) UserCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Users)
}

// CatalogStorage

func (f *FakeStorage) ListLevels(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListLevels"); err != nil {
		return nil, err
	}
	return distinct(f.Subjects, func(s core.Subject) (string, bool) { return s.Level, true }), nil
}

func (f *FakeStorage) ListBoards(_ context.Context, level string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListBoards"); err != nil {
		return nil, err
	}
	return distinct(f.Subjects, func(s core.Subject) (string, bool) { return s.Board, s.Level == level }), nil
}

func (f *FakeStorage) ListSubjects(_ context.Context, level, board string) ([]core.Subject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListSubjects"); err != nil {
		return nil, err
	}
	var out []core.Subject
	for _, s := range f.Subjects {
		if s.Level == level && s.Board == board {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FakeStorage) ListTopics(_ context.Context, subjectID int64) ([]core.Topic, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListTopics"); err != nil {
		return nil, err
	}
	var out []core.Topic
	for _, t := range f.Topics {
		if t.SubjectID == subjectID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *FakeStorage) ImportCatalog(_ context.Context, seeds []core.SubjectSeed) (core.ImportStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ImportCatalog"); err != nil {
		return core.ImportStats{}, err
	}
	var stats core.ImportStats
	for _, seed := range seeds {
		subject := seed.Subject
		subject.ID = int64(len(f.Subjects) + 1)
		f.Subjects = append(f.Subjects, subject)
		stats.Subjects++
		for _, t := range seed.Topics {
			t.ID = int64(len(f.Topics) + 1)
			t.SubjectID = subject.ID
			f.Topics = append(f.Topics, t)
			stats.Topics++
		}
	}
	return stats, nil
}

func distinct(subjects []core.Subject, pick func(core.Subject) (string, bool)) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range subjects {
		if v, ok := pick(s); ok && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

// PlanStorage

func (f *FakeStorage) ReplacePlan(_ context.Context, userID int64, rows []core.PlanRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ReplacePlan"); err != nil {
		return err
	}
	f.Plans[userID] = append([]core.PlanRow(nil), rows...)
	return nil
}

// ListPlan resolves hours like the SQL join: the last topic with a matching
// name wins, unmatched names get 0.
func (f *FakeStorage) ListPlan(_ context.Context, userID int64) ([]core.PlanItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("ListPlan"); err != nil {
		return nil, err
	}

	items := make([]core.PlanItem, 0, len(f.Plans[userID]))
	for i, row := range f.Plans[userID] {
		hours := 0
		for _, t := range f.Topics {
			if t.Name == row.Subject {
				hours = t.Hours
			}
		}
		items = append(items, core.PlanItem{
			ID:      int64(i + 1),
			Date:    row.ExamDate,
			Subject: row.Subject,
			Hours:   hours,
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Date.Equal(items[j].Date) {
			return items[i].Date.Before(items[j].Date)
		}
		return items[i].Subject < items[j].Subject
	})
	return items, nil
}

func (f *FakeStorage) DeletePlan(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.call("DeletePlan"); err != nil {
		return 0, err
	}
	n := len(f.Plans[userID])
	delete(f.Plans, userID)
	return n, nil
}
