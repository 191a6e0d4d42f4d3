package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/sam-admissions/tourbot/tour/contract"
	matchx "github.com/sam-admissions/tourbot/tour/match"
	modelx "github.com/sam-admissions/tourbot/tour/model"
)

// Store is the PostgreSQL implementation of contractx.Store.
type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// courseSeeds is the initial grade ledger. Seeding only runs against an
// empty table, so live counters are never reset.
var courseSeeds = []modelx.Course{
	{Name: "Inicial", CapacityAvailable: 6},
	{Name: "1° EGB", CapacityAvailable: 4},
	{Name: "2° EGB", CapacityAvailable: 2},
	{Name: "3° EGB", CapacityAvailable: 1},
	{Name: "4° EGB", CapacityAvailable: 0},
	{Name: "5° EGB", CapacityAvailable: 0},
	{Name: "6° EGB", CapacityAvailable: 3},
}

// Initialize creates the schema if missing and seeds tour dates and
// courses into empty tables. Safe to call on every boot.
func (s *Store) Initialize(ctx context.Context, seedDays int) error {
	if _, err := s.db.NewCreateTable().
		Model((*modelx.TourDate)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: create tour_dates: %v", contractx.ErrStorage, err)
	}
	if _, err := s.db.NewCreateTable().
		Model((*modelx.Course)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: create courses: %v", contractx.ErrStorage, err)
	}
	if _, err := s.db.NewCreateTable().
		Model((*modelx.Registration)(nil)).
		IfNotExists().
		ForeignKey(`("tour_date_id") REFERENCES "tour_dates" ("id")`).
		Exec(ctx); err != nil {
		return fmt.Errorf("%w: create registrations: %v", contractx.ErrStorage, err)
	}

	tourCount, err := s.db.NewSelect().Model((*modelx.TourDate)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: count tour_dates: %v", contractx.ErrStorage, err)
	}
	if tourCount == 0 && seedDays > 0 {
		seeds := seedTourDates(time.Now().UTC(), seedDays)
		if _, err := s.db.NewInsert().Model(&seeds).Exec(ctx); err != nil {
			return fmt.Errorf("%w: seed tour_dates: %v", contractx.ErrStorage, err)
		}
	}

	courseCount, err := s.db.NewSelect().Model((*modelx.Course)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: count courses: %v", contractx.ErrStorage, err)
	}
	if courseCount == 0 {
		seeds := make([]modelx.Course, len(courseSeeds))
		copy(seeds, courseSeeds)
		if _, err := s.db.NewInsert().Model(&seeds).Exec(ctx); err != nil {
			return fmt.Errorf("%w: seed courses: %v", contractx.ErrStorage, err)
		}
	}
	return nil
}

// seedTourDates builds the default tour calendar: one slot starting
// tomorrow, then every third day, alternating 10 and 12 seats.
func seedTourDates(now time.Time, days int) []modelx.TourDate {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	seeds := make([]modelx.TourDate, 0, days)
	for i := 1; i <= days; i++ {
		capacity := 12
		if i%2 == 1 {
			capacity = 10
		}
		seeds = append(seeds, modelx.TourDate{
			Date:     midnight.AddDate(0, 0, 1+(i-1)*3),
			Capacity: capacity,
			Status:   modelx.StatusOpen,
		})
	}
	return seeds
}

// ListActiveTours returns every non-closed tour ordered by date. The
// ordering is part of the contract: positional selectors resolve
// against it.
func (s *Store) ListActiveTours(ctx context.Context) ([]modelx.TourDate, error) {
	var tours []modelx.TourDate
	if err := s.db.NewSelect().
		Model(&tours).
		Where("td.status != ?", modelx.StatusClosed).
		Order("td.date ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: list tours: %v", contractx.ErrStorage, err)
	}
	return tours, nil
}

// ListCourses returns all grade courses in listing order.
func (s *Store) ListCourses(ctx context.Context) ([]modelx.Course, error) {
	var courses []modelx.Course
	if err := s.db.NewSelect().
		Model(&courses).
		Order("c.id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: list courses: %v", contractx.ErrStorage, err)
	}
	return courses, nil
}

// reserveGrade takes one capacity decision against the in-memory course
// rows: a matched full course gains a waitlist entry, otherwise a seat is
// taken. The matched course's counters are mutated so repeated grades in
// one batch observe earlier decisions.
func reserveGrade(courses []modelx.Course, grade string) (int, contractx.GradeReservation, bool) {
	i := matchx.CourseIndex(courses, grade)
	if i < 0 {
		return -1, contractx.GradeReservation{}, false
	}
	course := &courses[i]
	if course.IsFull() {
		course.WaitlistCount++
		return i, contractx.GradeReservation{Course: course.Name, Status: contractx.GradeWaitlist}, true
	}
	course.CapacityAvailable--
	return i, contractx.GradeReservation{Course: course.Name, Status: contractx.GradeAvailable}, true
}

// ReserveInterest applies one capacity decision per requested grade in a
// single transaction. Course rows are locked up front so two concurrent
// registrations cannot both take the last seat of a grade.
func (s *Store) ReserveInterest(ctx context.Context, grades []string) (contractx.ReserveOutcome, error) {
	var outcome contractx.ReserveOutcome
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var courses []modelx.Course
		if err := tx.NewSelect().
			Model(&courses).
			Order("c.id ASC").
			For("UPDATE").
			Scan(ctx); err != nil {
			return fmt.Errorf("lock courses: %v", err)
		}

		for _, grade := range grades {
			i, res, ok := reserveGrade(courses, grade)
			if !ok {
				continue
			}
			set := "capacity_available = capacity_available - 1"
			if res.Status == contractx.GradeWaitlist {
				set = "waitlist_count = waitlist_count + 1"
				outcome.WaitListed = true
			}
			if _, err := tx.NewUpdate().
				Model((*modelx.Course)(nil)).
				Set(set).
				Where("id = ?", courses[i].ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("apply %q: %v", res.Course, err)
			}
			outcome.Matched = append(outcome.Matched, res)
		}
		return nil
	})
	if err != nil {
		return contractx.ReserveOutcome{}, fmt.Errorf("%w: reserve interest: %v", contractx.ErrStorage, err)
	}
	return outcome, nil
}

// CreateRegistration books one family onto a tour date. The tour row is
// locked for the whole transaction and the registered counter always
// increments, even past capacity. The wait-listed flag is taken from the
// caller (the grade ledger outcome); tour capacity does not override it.
func (s *Store) CreateRegistration(ctx context.Context, tour modelx.TourDate, person contractx.Person, forceWaitListed bool) (modelx.Registration, bool, error) {
	var reg modelx.Registration
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var current modelx.TourDate
		if err := tx.NewSelect().
			Model(&current).
			Where("td.id = ?", tour.ID).
			For("UPDATE").
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: tour date %d", contractx.ErrNotFound, tour.ID)
			}
			return fmt.Errorf("lock tour date: %v", err)
		}
		if current.Status == modelx.StatusClosed {
			return fmt.Errorf("%w: tour date %d is closed", contractx.ErrNotFound, tour.ID)
		}

		if _, err := tx.NewUpdate().
			Model((*modelx.TourDate)(nil)).
			Set("registered = registered + 1").
			Where("id = ?", current.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("increment registered: %v", err)
		}

		reg = modelx.Registration{
			FirstName:     person.FirstName,
			LastName:      person.LastName,
			Email:         person.Email,
			Phone:         person.Phone,
			GradeInterest: person.GradeInterest,
			TourDateID:    current.ID,
			WaitListed:    forceWaitListed,
		}
		if _, err := tx.NewInsert().Model(&reg).Exec(ctx); err != nil {
			return fmt.Errorf("insert registration: %v", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return modelx.Registration{}, false, err
		}
		return modelx.Registration{}, false, fmt.Errorf("%w: create registration: %v", contractx.ErrStorage, err)
	}
	return reg, forceWaitListed, nil
}

// CloseExpiredTours marks every open tour dated before the cutoff as
// closed and reports how many rows changed.
func (s *Store) CloseExpiredTours(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.NewUpdate().
		Model((*modelx.TourDate)(nil)).
		Set("status = ?", modelx.StatusClosed).
		Where("date < ?", before).
		Where("status != ?", modelx.StatusClosed).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: close expired tours: %v", contractx.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: rows affected: %v", contractx.ErrStorage, err)
	}
	return n, nil
}
