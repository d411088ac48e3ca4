package leaderboard

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"scalpr/internal/game"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryStoreTopOrdersByMoneyDescending(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, s := range []game.Score{
		{Initials: "LOW", Money: 100, Days: 30},
		{Initials: "TOP", Money: 9000, Days: 30},
		{Initials: "MID", Money: 1500, Days: 12},
	} {
		if _, err := store.Submit(ctx, s); err != nil {
			t.Fatalf("submit: %v", err)
		}
	}

	top, err := store.Top(ctx, 2)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(top))
	}
	if top[0].Initials != "TOP" || top[1].Initials != "MID" {
		t.Fatalf("wrong order: %s, %s", top[0].Initials, top[1].Initials)
	}
}

func TestSQLStoreSQLiteRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	ctx := context.Background()
	store, err := NewSQLStore(ctx, db, DialectSQLite, discardLogger())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	for _, s := range []game.Score{
		{Initials: "AAA", Money: 500, Days: 30, Bought: 4, Sold: 2},
		{Initials: "BBB", Money: 2500, Days: 18, Bought: 12, Sold: 11},
		{Initials: "CCC", Money: 1200, Days: 30, Bought: 7, Sold: 6},
	} {
		if _, err := store.Submit(ctx, s); err != nil {
			t.Fatalf("submit %s: %v", s.Initials, err)
		}
	}

	top, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	want := []string{"BBB", "CCC", "AAA"}
	for i, initials := range want {
		if top[i].Initials != initials {
			t.Fatalf("position %d: got %s want %s", i, top[i].Initials, initials)
		}
	}
	if top[0].Bought != 12 || top[0].Sold != 11 {
		t.Fatalf("stats did not round-trip: %+v", top[0])
	}

	// Migrations must be idempotent across reopen.
	if _, err := NewSQLStore(ctx, db, DialectSQLite, discardLogger()); err != nil {
		t.Fatalf("reopen: %v", err)
	}
}

func TestSQLStorePostgresPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	store := &SQLStore{dialect: DialectPostgres, db: db, log: discardLogger()}

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO scores (id, initials, money, days, bought, sold, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
	)).WillReturnResult(sqlmock.NewResult(1, 1))

	if _, err := store.Submit(context.Background(), game.Score{Initials: "ZZZ", Money: 777, Days: 30}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "initials", "money", "days", "bought", "sold", "created_at"}).
		AddRow("01A", "ZZZ", 777, 30, 1, 1, now).
		AddRow("01B", "YYY", 900, 22, 2, 2, now)
	mock.ExpectQuery("SELECT id, initials, money, days, bought, sold, created_at").
		WithArgs(10).
		WillReturnRows(rows)

	top, err := store.Top(context.Background(), 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if top[0].Initials != "YYY" {
		t.Fatalf("expected client-side re-sort to put YYY first, got %s", top[0].Initials)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
