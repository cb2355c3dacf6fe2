// Package activity manages the configured activities: the named things time
// is tracked against. An activity's id sign encodes its state: positive ids
// are active, negative ids are deactivated. The magnitude orders the
// activities within each state.
package activity

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/srcsintheta/timetracker/internal/store"
)

// ErrNoSuchActivity is returned when an activity id has no row.
var ErrNoSuchActivity = errors.New("no such activity")

// Activity is a row from the activities table.
type Activity struct {
	ID         int
	Name       string
	Added      string // YYYY-MM-DD
	HoursTotal float64
}

// Store provides persistence for activities.
type Store struct {
	db *sql.DB
}

// NewStore creates a new Store backed by db.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Add inserts a new activity with the next free positive id.
func (s *Store) Add(name string, now time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO `+store.TableActivities+` (name, added, hourstotal) VALUES (?, ?, 0.0)`,
		name, now.Format("2006-01-02"),
	)
	if err != nil {
		return fmt.Errorf("adding activity: %w", err)
	}
	return nil
}

// List returns activities in one of the two states. Active activities are
// ordered by ascending id, deactivated ones by descending id (most recently
// deactivated first, since deactivation pushes ids downward).
func (s *Store) List(active bool) ([]Activity, error) {
	query := `SELECT id, name, added, hourstotal FROM ` + store.TableActivities +
		` WHERE id > 0 ORDER BY id ASC`
	if !active {
		query = `SELECT id, name, added, hourstotal FROM ` + store.TableActivities +
			` WHERE id < 0 ORDER BY id DESC`
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var acts []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Name, &a.Added, &a.HoursTotal); err != nil {
			return nil, err
		}
		acts = append(acts, a)
	}
	return acts, rows.Err()
}

// Name returns the display name for an activity id.
func (s *Store) Name(id int) (string, error) {
	var name string
	err := s.db.QueryRow(
		`SELECT name FROM `+store.TableActivities+` WHERE id = ?`, id,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoSuchActivity
	}
	return name, err
}

// Get returns the full row for an activity id.
func (s *Store) Get(id int) (Activity, error) {
	var a Activity
	err := s.db.QueryRow(
		`SELECT id, name, added, hourstotal FROM `+store.TableActivities+` WHERE id = ?`, id,
	).Scan(&a.ID, &a.Name, &a.Added, &a.HoursTotal)
	if errors.Is(err, sql.ErrNoRows) {
		return Activity{}, ErrNoSuchActivity
	}
	return a, err
}

// HighestActiveID returns the largest positive activity id, or 0 when no
// active activities exist.
func (s *Store) HighestActiveID() (int, error) {
	var id int
	err := s.db.QueryRow(
		`SELECT id FROM ` + store.TableActivities + ` WHERE id > 0 ORDER BY id DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return id, err
}

// Deactivate moves an active activity to the inactive id range and compacts
// the active ids above it, in both the activities and history tables. The
// history rows move with the activity so its record survives deactivation.
func (s *Store) Deactivate(id int) error {
	if id <= 0 {
		return ErrNoSuchActivity
	}
	if _, err := s.Get(id); err != nil {
		return err
	}

	var lowestInactive int
	err := s.db.QueryRow(
		`SELECT id FROM ` + store.TableActivities + ` WHERE id < 0 ORDER BY id ASC LIMIT 1`,
	).Scan(&lowestInactive)
	if errors.Is(err, sql.ErrNoRows) {
		lowestInactive = 0
	} else if err != nil {
		return err
	}

	return s.renumber(id, lowestInactive-1, +1)
}

// Reactivate moves a deactivated activity back to the active id range and
// compacts the inactive ids below it.
func (s *Store) Reactivate(id int) error {
	if id >= 0 {
		return ErrNoSuchActivity
	}
	if _, err := s.Get(id); err != nil {
		return err
	}

	highestActive, err := s.HighestActiveID()
	if err != nil {
		return err
	}

	return s.renumber(id, highestActive+1, -1)
}

// renumber moves the activity at oldID to newID in both tables and then
// shifts every id on the far side of the vacated slot one step toward it,
// so each id range stays contiguous. step is +1 when deactivating (walk up
// the active ids) and -1 when reactivating (walk down the inactive ids).
// Foreign keys are suspended while ids are in flux.
func (s *Store) renumber(oldID, newID, step int) error {
	if _, err := s.db.Exec(`PRAGMA foreign_keys=OFF`); err != nil {
		return err
	}
	defer s.db.Exec(`PRAGMA foreign_keys=ON`)

	if err := s.moveID(oldID, newID); err != nil {
		return err
	}

	for id := oldID + step; ; id += step {
		changed, err := s.shiftID(id, id-step)
		if err != nil {
			return err
		}
		if changed == 0 {
			break
		}
	}
	return nil
}

func (s *Store) moveID(from, to int) error {
	if _, err := s.db.Exec(
		`UPDATE `+store.TableActivities+` SET id = ? WHERE id = ?`, to, from,
	); err != nil {
		return fmt.Errorf("renumbering activity: %w", err)
	}
	if _, err := s.db.Exec(
		`UPDATE `+store.TableHistory+` SET id = ? WHERE id = ?`, to, from,
	); err != nil {
		return fmt.Errorf("renumbering history: %w", err)
	}
	return nil
}

// shiftID moves an activity id and its history rows; returns how many
// activity rows changed so callers know when the contiguous range ends.
func (s *Store) shiftID(from, to int) (int64, error) {
	res, err := s.db.Exec(
		`UPDATE `+store.TableActivities+` SET id = ? WHERE id = ?`, to, from,
	)
	if err != nil {
		return 0, fmt.Errorf("shifting activity id: %w", err)
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if changed == 0 {
		return 0, nil
	}
	if _, err := s.db.Exec(
		`UPDATE `+store.TableHistory+` SET id = ? WHERE id = ?`, to, from,
	); err != nil {
		return 0, fmt.Errorf("shifting history id: %w", err)
	}
	return changed, nil
}
