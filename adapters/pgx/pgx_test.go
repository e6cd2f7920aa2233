package pgx

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/studyplan/core"
)

// newTestAdapter connects to STUDYPLAN_TEST_DATABASE_URL, migrates it and
// empties every table. The database is shared, so tests do not run in parallel.
func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()

	url := os.Getenv("STUDYPLAN_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("STUDYPLAN_TEST_DATABASE_URL not set")
	}
	if err := MigrateUp(url); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE student_topics, topics, subjects, localauthsession, userinfo, localuser RESTART IDENTITY CASCADE`)
	if err != nil {
		t.Fatalf("truncate error = %v", err)
	}
	return New(pool)
}

func createUser(t *testing.T, a *Adapter, username, email string) *core.User {
	t.Helper()
	u := &core.User{Username: username, Email: email, Enabled: true}
	if err := a.CreateUser(context.Background(), u, "$2a$04$hash"); err != nil {
		t.Fatalf("CreateUser(%s) error = %v", username, err)
	}
	return u
}

// Requirement: a user and its profile are written together; duplicates map to sentinels.
func TestAdapter_CreateUser(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()

	alice := createUser(t, a, "alice", "alice@example.com")
	if alice.ID == 0 || alice.CreatedAt.IsZero() {
		t.Fatalf("CreateUser() did not fill ID/CreatedAt: %+v", alice)
	}

	tests := []struct {
		name    string
		user    core.User
		wantErr error
	}{
		{name: "duplicate username", user: core.User{Username: "alice", Email: "other@example.com"}, wantErr: core.ErrUsernameExists},
		{name: "duplicate email", user: core.User{Username: "bob", Email: "alice@example.com"}, wantErr: core.ErrEmailExists},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			u := test.user
			if err := a.CreateUser(ctx, &u, "x"); !errors.Is(err, test.wantErr) {
				t.Fatalf("CreateUser() error = %v, want %v", err, test.wantErr)
			}
		})
	}

	// the failed email insert must not leave a half-created bob behind
	if exists, _ := a.UsernameExists(ctx, "bob"); exists {
		t.Error("bob exists after rolled back registration")
	}

	creds, err := a.GetCredentialsByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetCredentialsByUsername() error = %v", err)
	}
	if creds.UserID != alice.ID || creds.Email != "alice@example.com" || !creds.Enabled {
		t.Errorf("credentials = %+v", creds)
	}

	if _, err := a.GetCredentialsByUsername(ctx, "nobody"); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("unknown username error = %v", err)
	}

	got, err := a.GetUserByID(ctx, alice.ID)
	if err != nil || got.Username != "alice" {
		t.Errorf("GetUserByID() = %+v, %v", got, err)
	}
}

// Requirement: sessions resolve to identities and are removed by hash, user and expiry.
func TestAdapter_Sessions(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	alice := createUser(t, a, "alice", "alice@example.com")
	now := time.Now().UTC().Truncate(time.Second)

	live := &core.Session{UserID: alice.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)}
	stale := &core.Session{UserID: alice.ID, TokenHash: "stale", ExpiresAt: now.Add(-time.Hour)}
	for _, s := range []*core.Session{live, stale} {
		if err := a.CreateSession(ctx, s); err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
	}

	data, err := a.GetSessionData(ctx, "live")
	if err != nil {
		t.Fatalf("GetSessionData() error = %v", err)
	}
	if data.Identity.ID != alice.ID || data.Identity.Username != "alice" || data.Identity.Email != "alice@example.com" {
		t.Errorf("identity = %+v", data.Identity)
	}
	if !data.Session.ExpiresAt.Equal(live.ExpiresAt) {
		t.Errorf("ExpiresAt = %v, want %v", data.Session.ExpiresAt, live.ExpiresAt)
	}

	if _, err := a.GetSessionData(ctx, "missing"); !errors.Is(err, core.ErrSessionNotFound) {
		t.Errorf("missing session error = %v", err)
	}

	n, err := a.DeleteExpiredSessions(ctx, now)
	if err != nil || n != 1 {
		t.Fatalf("DeleteExpiredSessions() = %d, %v; want 1", n, err)
	}

	if err := a.DeleteSessionByHash(ctx, "stale"); err != nil {
		t.Errorf("DeleteSessionByHash() on a missing row error = %v", err)
	}

	n, err = a.DeleteUserSessions(ctx, alice.ID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteUserSessions() = %d, %v; want 1", n, err)
	}
}

// Requirement: catalog import upserts, and plans are replaced whole with hours joined by topic name.
func TestAdapter_CatalogAndPlan(t *testing.T) {
	a := newTestAdapter(t)
	ctx := context.Background()
	alice := createUser(t, a, "alice", "alice@example.com")
	exam := time.Date(2026, time.May, 14, 0, 0, 0, 0, time.UTC)

	seeds := []core.SubjectSeed{{
		Subject: core.Subject{Level: "GCSE", Board: "AQA", Name: "Maths", ExamCode: "8300", ExamDate: exam},
		Topics:  []core.Topic{{Name: "Geometry", Hours: 4}, {Name: "Algebra", Hours: 3}},
	}}
	stats, err := a.ImportCatalog(ctx, seeds)
	if err != nil || stats.Subjects != 1 || stats.Topics != 2 {
		t.Fatalf("ImportCatalog() = %+v, %v", stats, err)
	}

	// re-import updates hours in place
	seeds[0].Topics[1].Hours = 5
	if _, err := a.ImportCatalog(ctx, seeds); err != nil {
		t.Fatalf("second ImportCatalog() error = %v", err)
	}

	levels, err := a.ListLevels(ctx)
	if err != nil || len(levels) != 1 || levels[0] != "GCSE" {
		t.Fatalf("ListLevels() = %v, %v", levels, err)
	}
	subjects, err := a.ListSubjects(ctx, "GCSE", "AQA")
	if err != nil || len(subjects) != 1 {
		t.Fatalf("ListSubjects() = %v, %v", subjects, err)
	}
	topics, err := a.ListTopics(ctx, subjects[0].ID)
	if err != nil || len(topics) != 2 || topics[0].Name != "Algebra" || topics[0].Hours != 5 {
		t.Fatalf("ListTopics() = %+v, %v", topics, err)
	}

	rows := []core.PlanRow{
		{Level: "GCSE", Subject: "Geometry", ExamBoard: "AQA", ExamCode: "8300", ExamDate: exam},
		{Level: "GCSE", Subject: "Algebra", ExamBoard: "AQA", ExamCode: "8300", ExamDate: exam},
		{Level: "GCSE", Subject: "Unlisted", ExamBoard: "AQA", ExamCode: "8300", ExamDate: exam},
	}
	if err := a.ReplacePlan(ctx, alice.ID, rows); err != nil {
		t.Fatalf("ReplacePlan() error = %v", err)
	}
	if err := a.ReplacePlan(ctx, alice.ID, rows[:2]); err != nil {
		t.Fatalf("second ReplacePlan() error = %v", err)
	}

	items, err := a.ListPlan(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListPlan() error = %v", err)
	}
	if len(items) != 2 || items[0].Subject != "Algebra" || items[0].Hours != 5 || items[1].Hours != 4 {
		t.Fatalf("ListPlan() = %+v", items)
	}

	n, err := a.DeletePlan(ctx, alice.ID)
	if err != nil || n != 2 {
		t.Fatalf("DeletePlan() = %d, %v; want 2", n, err)
	}
}

func TestMigrateURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "postgres://u:p@localhost:5432/db", want: "pgx5://u:p@localhost:5432/db"},
		{in: "postgresql://localhost/db", want: "pgx5://localhost/db"},
		{in: "pgx5://localhost/db", want: "pgx5://localhost/db"},
	}
	for _, test := range tests {
		if got := migrateURL(test.in); got != test.want {
			t.Errorf("migrateURL(%q) = %q, want %q", test.in, got, test.want)
		}
	}
}
