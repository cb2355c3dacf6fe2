package ledger_test

import (
	"database/sql"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/srcsintheta/timetracker/internal/activity"
	"github.com/srcsintheta/timetracker/internal/ledger"
	"github.com/srcsintheta/timetracker/internal/store"
)

const epsilon = 1e-6

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := store.OpenAt(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	s := activity.NewStore(db.Conn())
	added := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"A", "B"} {
		if err := s.Add(name, added); err != nil {
			t.Fatalf("adding activity %q: %v", name, err)
		}
	}
	return db.Conn()
}

func dayHours(t *testing.T, db *sql.DB, actID int, date string) float64 {
	t.Helper()
	var hours float64
	err := db.QueryRow(
		`SELECT hoursonday FROM `+store.TableHistory+` WHERE id = ? AND date = ?`,
		actID, date,
	).Scan(&hours)
	if errors.Is(err, sql.ErrNoRows) {
		return 0
	}
	if err != nil {
		t.Fatalf("querying day hours: %v", err)
	}
	return hours
}

func totalHours(t *testing.T, db *sql.DB, actID int) float64 {
	t.Helper()
	var total float64
	if err := db.QueryRow(
		`SELECT hourstotal FROM `+store.TableActivities+` WHERE id = ?`, actID,
	).Scan(&total); err != nil {
		t.Fatalf("querying total: %v", err)
	}
	return total
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}

func TestEnterSingleDay(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	end := start.Add(2*time.Hour + 30*time.Minute)

	if err := ledger.Enter(db, start, end, 1); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	if got := dayHours(t, db, 1, "2024-01-15"); !closeTo(got, 2.5) {
		t.Errorf("day hours = %v, want 2.5", got)
	}
	if got := totalHours(t, db, 1); !closeTo(got, 2.5) {
		t.Errorf("total = %v, want 2.5", got)
	}
}

func TestEnterAccumulatesOnSameDay(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	if err := ledger.Enter(db, start, start.Add(time.Hour), 1); err != nil {
		t.Fatalf("first Enter: %v", err)
	}
	if err := ledger.Enter(db, start.Add(3*time.Hour), start.Add(4*time.Hour), 1); err != nil {
		t.Fatalf("second Enter: %v", err)
	}

	if got := dayHours(t, db, 1, "2024-01-15"); !closeTo(got, 2) {
		t.Errorf("day hours = %v, want 2", got)
	}
	if got := totalHours(t, db, 1); !closeTo(got, 2) {
		t.Errorf("total = %v, want 2", got)
	}

	var count int
	if err := db.QueryRow(
		`SELECT COUNT(*) FROM ` + store.TableHistory,
	).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected a single day row, got %d", count)
	}
}

func TestEnterSplitsAtMidnight(t *testing.T) {
	db := openTestDB(t)

	// 23:00 to 01:30 next day: 1h before midnight, 1.5h after.
	start := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 1, 30, 0, 0, time.UTC)

	if err := ledger.Enter(db, start, end, 1); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	first := dayHours(t, db, 1, "2024-01-01")
	second := dayHours(t, db, 1, "2024-01-02")
	if !closeTo(first, 1) {
		t.Errorf("start day hours = %v, want 1", first)
	}
	if !closeTo(second, 1.5) {
		t.Errorf("end day hours = %v, want 1.5", second)
	}
	if !closeTo(first+second, 2.5) {
		t.Errorf("split parts sum to %v, want 2.5", first+second)
	}
	if got := totalHours(t, db, 1); !closeTo(got, 2.5) {
		t.Errorf("total = %v, want 2.5", got)
	}
}

func TestEnterSplitCalendarFields(t *testing.T) {
	db := openTestDB(t)

	// Crossing both midnight and a year boundary; the end day belongs to
	// ISO week 1 of 2025.
	start := time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)

	if err := ledger.Enter(db, start, end, 1); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	var year, month, day, isoweek, isoweekyear int
	if err := db.QueryRow(
		`SELECT year, month, day, isoweek, isoweekyear FROM `+store.TableHistory+
			` WHERE id = 1 AND date = '2025-01-01'`,
	).Scan(&year, &month, &day, &isoweek, &isoweekyear); err != nil {
		t.Fatalf("querying end day row: %v", err)
	}
	if year != 2025 || month != 1 || day != 1 {
		t.Errorf("calendar fields = %d-%d-%d, want 2025-1-1", year, month, day)
	}
	if isoweek != 1 || isoweekyear != 2025 {
		t.Errorf("iso fields = week %d year %d, want week 1 year 2025", isoweek, isoweekyear)
	}

	// The start day of 2024-12-31 is ISO week 1 of 2025 as well.
	if err := db.QueryRow(
		`SELECT isoweek, isoweekyear FROM `+store.TableHistory+
			` WHERE id = 1 AND date = '2024-12-31'`,
	).Scan(&isoweek, &isoweekyear); err != nil {
		t.Fatalf("querying start day row: %v", err)
	}
	if isoweek != 1 || isoweekyear != 2025 {
		t.Errorf("start day iso fields = week %d year %d, want week 1 year 2025", isoweek, isoweekyear)
	}
}

func TestEnterOffsetChangeShrinksLaterPart(t *testing.T) {
	db := openTestDB(t)

	// Spring-forward across midnight: the naive parts (1h + 3h) overshoot
	// the true elapsed 3h, so the from-midnight part shrinks to 2h.
	cet := time.FixedZone("CET", 1*3600)
	cest := time.FixedZone("CEST", 2*3600)
	start := time.Date(2024, 3, 30, 23, 0, 0, 0, cet)
	end := time.Date(2024, 3, 31, 3, 0, 0, 0, cest)

	if got := end.Sub(start).Hours(); !closeTo(got, 3) {
		t.Fatalf("fixture wrong: true duration = %v, want 3", got)
	}

	if err := ledger.Enter(db, start, end, 1); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	first := dayHours(t, db, 1, "2024-03-30")
	second := dayHours(t, db, 1, "2024-03-31")
	if !closeTo(first, 1) {
		t.Errorf("start day hours = %v, want 1 (earlier part untouched)", first)
	}
	if !closeTo(second, 2) {
		t.Errorf("end day hours = %v, want 2 (later part shrunk)", second)
	}
	if got := totalHours(t, db, 1); !closeTo(got, 3) {
		t.Errorf("total = %v, want 3", got)
	}
}

func TestEnterEastboundDateRollback(t *testing.T) {
	db := openTestDB(t)

	// The end's date-only value precedes the start's (offset jumped east
	// across midnight). The split is skipped and the whole duration lands
	// on the start day.
	zoneA := time.FixedZone("UTC+3", 3*3600)
	zoneB := time.FixedZone("UTC+1", 1*3600)
	start := time.Date(2024, 6, 1, 0, 30, 0, 0, zoneA)
	end := time.Date(2024, 5, 31, 23, 30, 0, 0, zoneB)

	if got := end.Sub(start).Hours(); !closeTo(got, 1) {
		t.Fatalf("fixture wrong: true duration = %v, want 1", got)
	}

	if err := ledger.Enter(db, start, end, 1); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	if got := dayHours(t, db, 1, "2024-06-01"); !closeTo(got, 1) {
		t.Errorf("start day hours = %v, want full duration 1", got)
	}
	if got := dayHours(t, db, 1, "2024-05-31"); got != 0 {
		t.Errorf("end day has %v hours, want no row", got)
	}
}

func TestEnterRejectsLongIntervals(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	err := ledger.Enter(db, start, start.Add(24*time.Hour), 1)
	if !errors.Is(err, ledger.ErrTooLong) {
		t.Errorf("24h interval: got %v, want ErrTooLong", err)
	}
	if got := totalHours(t, db, 1); got != 0 {
		t.Errorf("total changed to %v after rejected entry", got)
	}

	// 23h59m is still fine.
	if err := ledger.Enter(db, start, start.Add(23*time.Hour+59*time.Minute), 1); err != nil {
		t.Errorf("23h59m interval rejected: %v", err)
	}
	want := 23.0 + 59.0/60.0
	if got := totalHours(t, db, 1); !closeTo(got, want) {
		t.Errorf("total = %v, want %v", got, want)
	}
}

func TestEnterRejectsBackwardsInterval(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	err := ledger.Enter(db, start, start.Add(-time.Hour), 1)
	if !errors.Is(err, ledger.ErrInvalidInterval) {
		t.Errorf("got %v, want ErrInvalidInterval", err)
	}
}

func TestEnterUnknownActivity(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	err := ledger.Enter(db, start, start.Add(time.Hour), 99)
	if !errors.Is(err, activity.ErrNoSuchActivity) {
		t.Errorf("got %v, want ErrNoSuchActivity", err)
	}
}

func TestEnterEndDayCollisionIsIntegrityError(t *testing.T) {
	db := openTestDB(t)

	// A pre-existing row on the end day cannot happen under sequential
	// use; Enter must refuse instead of silently doubling up.
	if _, err := db.Exec(
		`INSERT INTO `+store.TableHistory+
			` (id, year, month, day, isoweek, isoweekyear, hoursonday, date)
			 VALUES (1, 2024, 1, 2, 1, 2024, 5.0, '2024-01-02')`,
	); err != nil {
		t.Fatal(err)
	}

	start := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 2, 1, 0, 0, 0, time.UTC)

	err := ledger.Enter(db, start, end, 1)
	var ierr *store.IntegrityError
	if !errors.As(err, &ierr) {
		t.Errorf("got %v, want *store.IntegrityError", err)
	}
}

func TestRemoveRoundTrip(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	if err := ledger.Enter(db, start, start.Add(90*time.Minute), 1); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	if err := ledger.Remove(db, start, 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	if got := totalHours(t, db, 1); got != 0 {
		t.Errorf("total after round trip = %v, want exactly 0", got)
	}
	if got := dayHours(t, db, 1, "2024-01-15"); got != 0 {
		t.Errorf("day row still present with %v hours", got)
	}
}

func TestRemoveMissingEntry(t *testing.T) {
	db := openTestDB(t)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	err := ledger.Remove(db, date, 1)
	if !errors.Is(err, ledger.ErrNoSuchEntry) {
		t.Errorf("got %v, want ErrNoSuchEntry", err)
	}
}

func TestRemoveRejectsInactiveID(t *testing.T) {
	db := openTestDB(t)

	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if err := ledger.Remove(db, date, -1); err == nil {
		t.Error("expected error for negative activity id")
	}
}

func TestRemoveDetectsDivergedTotal(t *testing.T) {
	db := openTestDB(t)

	start := time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)
	if err := ledger.Enter(db, start, start.Add(2*time.Hour), 1); err != nil {
		t.Fatalf("Enter: %v", err)
	}

	// Corrupt the running total so the deduction would go negative.
	if _, err := db.Exec(
		`UPDATE `+store.TableActivities+` SET hourstotal = 0.5 WHERE id = 1`,
	); err != nil {
		t.Fatal(err)
	}

	err := ledger.Remove(db, start, 1)
	var ierr *store.IntegrityError
	if !errors.As(err, &ierr) {
		t.Errorf("got %v, want *store.IntegrityError", err)
	}
}

func TestFirstEntry(t *testing.T) {
	db := openTestDB(t)

	if _, err := ledger.FirstEntry(db); !errors.Is(err, ledger.ErrNoEntries) {
		t.Errorf("empty history: got %v, want ErrNoEntries", err)
	}

	for _, day := range []int{20, 12, 15} {
		start := time.Date(2023, 12, day, 9, 0, 0, 0, time.UTC)
		if err := ledger.Enter(db, start, start.Add(time.Hour), 1); err != nil {
			t.Fatalf("Enter: %v", err)
		}
	}

	first, err := ledger.FirstEntry(db)
	if err != nil {
		t.Fatalf("FirstEntry: %v", err)
	}
	if first.Format("2006-01-02") != "2023-12-12" {
		t.Errorf("first entry = %s, want 2023-12-12", first.Format("2006-01-02"))
	}
}

func TestRecent(t *testing.T) {
	db := openTestDB(t)

	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	for _, day := range []int{10, 14, 18, 20} {
		start := time.Date(2024, 1, day, 9, 0, 0, 0, time.UTC)
		if err := ledger.Enter(db, start, start.Add(time.Hour), 1); err != nil {
			t.Fatalf("Enter: %v", err)
		}
	}

	entries, err := ledger.Recent(db, now, 8)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries within 8 days, got %d", len(entries))
	}
	if entries[0].Date != "2024-01-20" || entries[2].Date != "2024-01-14" {
		t.Errorf("unexpected order: %s .. %s", entries[0].Date, entries[2].Date)
	}
}
