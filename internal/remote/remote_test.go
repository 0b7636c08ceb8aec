package remote

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sandeepkv93/leap/internal/model"
	"github.com/sandeepkv93/leap/internal/outbox"
)

type statement struct {
	sql  string
	vars []any
}

// dryRunClient builds SQL without a server and records every statement.
func dryRunClient(t *testing.T) (*Client, *[]statement) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=127.0.0.1 user=leap dbname=leap sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open dry run db: %v", err)
	}
	var captured []statement
	capture := func(tx *gorm.DB) {
		captured = append(captured, statement{sql: tx.Statement.SQL.String(), vars: append([]any(nil), tx.Statement.Vars...)})
	}
	mustRegister(t, db.Callback().Query().After("gorm:query").Register("leap:capture_query", capture))
	mustRegister(t, db.Callback().Create().After("gorm:create").Register("leap:capture_create", capture))
	mustRegister(t, db.Callback().Update().After("gorm:update").Register("leap:capture_update", capture))
	mustRegister(t, db.Callback().Delete().After("gorm:delete").Register("leap:capture_delete", capture))
	return NewClient(db, zap.NewNop()), &captured
}

func mustRegister(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
}

func TestFetchDailyTasksQuery(t *testing.T) {
	c, captured := dryRunClient(t)
	entries, err := c.FetchDailyTasks(context.Background(), model.CategoryTravel, 2, 50)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("dry run returned rows")
	}
	if len(*captured) != 1 {
		t.Fatalf("expected one statement, got %d", len(*captured))
	}
	st := (*captured)[0]
	for _, frag := range []string{`FROM "daily_tasks"`, "category = $1", "tier <= $2", "is_active = $3", "LIMIT"} {
		if !strings.Contains(st.sql, frag) {
			t.Fatalf("query %q missing %q", st.sql, frag)
		}
	}
	if st.vars[0] != "solo_trip" || st.vars[1] != 2 || st.vars[2] != true {
		t.Fatalf("unexpected vars %v", st.vars)
	}
}

func TestFetchSponsoredChallengesQuery(t *testing.T) {
	c, captured := dryRunClient(t)
	if _, err := c.FetchSponsoredChallenges(context.Background(), "2026-03-10"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	st := (*captured)[0]
	for _, frag := range []string{`FROM "sponsored_challenges"`, "is_active = $1", "start_date <= $2", "end_date >= $3"} {
		if !strings.Contains(st.sql, frag) {
			t.Fatalf("query %q missing %q", st.sql, frag)
		}
	}
}

func TestCreateUserNeedsReturnedID(t *testing.T) {
	c, captured := dryRunClient(t)
	_, err := c.CreateUser(context.Background(), outbox.CreateUserPayload{Category: model.CategoryWorth, Pace: model.PaceSteady})
	if !errors.Is(err, ErrEmptyUserID) {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}
	st := (*captured)[0]
	if !strings.Contains(st.sql, `INSERT INTO "users"`) {
		t.Fatalf("unexpected insert %q", st.sql)
	}
	found := false
	for _, v := range st.vars {
		if p, ok := v.(*string); ok && p != nil && *p == "salary" {
			found = true
		}
	}
	if !found {
		t.Fatalf("remote category missing from vars %v", st.vars)
	}
}

func TestRecordMoveInsert(t *testing.T) {
	c, captured := dryRunClient(t)
	err := c.RecordMove(context.Background(), "user-1", outbox.RecordMovePayload{
		Tier:        model.TierBoss,
		Title:       "Book the flight",
		ProofText:   "Booked it.",
		AIVerified:  true,
		Points:      10,
		CompletedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	st := (*captured)[0]
	for _, frag := range []string{`INSERT INTO "moves"`, `"user_id"`, `"ai_verified"`, `"proof_photo_url"`} {
		if !strings.Contains(st.sql, frag) {
			t.Fatalf("insert %q missing %q", st.sql, frag)
		}
	}
}

func TestUpsertProfileOnlyChangedFields(t *testing.T) {
	c, captured := dryRunClient(t)
	if err := c.UpsertProfile(context.Background(), "user-1", outbox.ProfilePayload{}); err != nil {
		t.Fatalf("empty upsert: %v", err)
	}
	if len(*captured) != 0 {
		t.Fatalf("empty profile issued %d statements", len(*captured))
	}

	name := "Sam"
	if err := c.UpsertProfile(context.Background(), "user-1", outbox.ProfilePayload{Name: &name}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	st := (*captured)[0]
	if !strings.Contains(st.sql, `UPDATE "users" SET "name"=$1`) || strings.Contains(st.sql, "email") {
		t.Fatalf("unexpected update %q", st.sql)
	}
}

func TestDeleteUserRemovesMovesFirst(t *testing.T) {
	c, captured := dryRunClient(t)
	if err := c.DeleteUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(*captured) != 2 {
		t.Fatalf("expected two statements, got %d", len(*captured))
	}
	if !strings.Contains((*captured)[0].sql, `DELETE FROM "moves"`) || !strings.Contains((*captured)[1].sql, `DELETE FROM "users"`) {
		t.Fatalf("unexpected delete order: %q then %q", (*captured)[0].sql, (*captured)[1].sql)
	}
}

func TestRowMapping(t *testing.T) {
	desc := "Go."
	cat := "side_hustle"
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	entry := dailyTaskRow{MoveType: "power", Title: "T", Description: &desc, Tier: 2, IsActive: true}.entry()
	if entry.Tier != model.TierPower || entry.Level != 2 || entry.Description != "Go." {
		t.Fatalf("unexpected entry %+v", entry)
	}

	ch := sponsoredChallengeRow{ID: "c1", MoveType: "boss", Category: &cat, StartDate: &start, EndDate: &end, IsActive: true}.challenge()
	if ch.Category != model.CategoryLaunch || !ch.ActiveOn("2026-03-31") || ch.ActiveOn("2026-04-01") {
		t.Fatalf("unexpected challenge %+v", ch)
	}
}

func TestDecodeChange(t *testing.T) {
	c, err := decodeChange(ChannelDailyTasks, `{"eventType":"INSERT","new":{"id":"t1"},"old":null}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Table != TableDailyTasks || c.EventType != "INSERT" || !strings.Contains(string(c.New), "t1") {
		t.Fatalf("unexpected change %+v", c)
	}
	if _, err := decodeChange("other", "{}"); err == nil {
		t.Fatalf("expected error for unknown channel")
	}
	if _, err := decodeChange(ChannelSponsoredChallenges, "{"); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

type fakeConn struct {
	notes  chan *pgconn.Notification
	listen []string
}

func (f *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.listen = append(f.listen, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case n := <-f.notes:
		return n, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeConn) Close(context.Context) error { return nil }

func TestListenerReconnectsAndRelays(t *testing.T) {
	conn := &fakeConn{notes: make(chan *pgconn.Notification, 4)}
	conn.notes <- &pgconn.Notification{Channel: ChannelDailyTasks, Payload: `{"eventType":"UPDATE"}`}
	conn.notes <- &pgconn.Notification{Channel: "junk", Payload: "{}"}
	conn.notes <- &pgconn.Notification{Channel: ChannelSponsoredChallenges, Payload: `{"eventType":"DELETE"}`}

	var (
		mu    sync.Mutex
		dials int
		got   []Change
	)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := newListener(func(context.Context) (notifier, error) {
		mu.Lock()
		defer mu.Unlock()
		dials++
		if dials == 1 {
			return nil, errors.New("connection refused")
		}
		return conn, nil
	}, func(_ context.Context, c Change) {
		mu.Lock()
		got = append(got, c)
		n := len(got)
		mu.Unlock()
		if n == 2 {
			cancel()
		}
	}, zap.NewNop())
	l.minBackoff = time.Millisecond

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("listener did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if dials != 2 {
		t.Fatalf("expected a reconnect, dials=%d", dials)
	}
	if len(got) != 2 || got[0].Table != TableDailyTasks || got[1].Table != TableSponsoredChallenges {
		t.Fatalf("unexpected changes %+v", got)
	}
	if len(conn.listen) != 2 || conn.listen[0] != `LISTEN "daily_tasks_changes"` {
		t.Fatalf("unexpected LISTEN statements %v", conn.listen)
	}
}

type fakeSource struct {
	list []model.SponsoredChallenge
	err  error
}

func (f fakeSource) FetchSponsoredChallenges(context.Context, string) ([]model.SponsoredChallenge, error) {
	return f.list, f.err
}

type fakeChallengeStore struct {
	replaced [][]model.SponsoredChallenge
}

func (f *fakeChallengeStore) Today() string { return "2026-03-10" }

func (f *fakeChallengeStore) ReplaceSponsoredChallenges(_ context.Context, list []model.SponsoredChallenge) error {
	f.replaced = append(f.replaced, list)
	return nil
}

type countingEnsurer struct{ calls int }

func (c *countingEnsurer) EnsureTodaysMoves(context.Context) (bool, error) {
	c.calls++
	return false, nil
}

func TestRefresherHandlesChanges(t *testing.T) {
	st := &fakeChallengeStore{}
	moves := &countingEnsurer{}
	r := NewRefresher(fakeSource{list: []model.SponsoredChallenge{{ID: "c1"}}}, st, moves, zap.NewNop())

	r.HandleChange(context.Background(), Change{Table: TableSponsoredChallenges})
	r.HandleChange(context.Background(), Change{Table: TableDailyTasks})
	if len(st.replaced) != 1 || st.replaced[0][0].ID != "c1" {
		t.Fatalf("challenges not replaced: %+v", st.replaced)
	}
	if moves.calls != 1 {
		t.Fatalf("expected daily move refresh, got %d", moves.calls)
	}

	failing := NewRefresher(fakeSource{err: errors.New("offline")}, st, nil, zap.NewNop())
	failing.RefreshChallenges(context.Background())
	if len(st.replaced) != 1 {
		t.Fatalf("failed fetch replaced the cache")
	}
}
