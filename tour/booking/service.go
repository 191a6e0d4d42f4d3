// Package booking is the registration core. It resolves tour selectors,
// drives the grade capacity ledger and persists registrations through a
// contractx.Store.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/sam-admissions/tourbot/tour/contract"
	matchx "github.com/sam-admissions/tourbot/tour/match"
	modelx "github.com/sam-admissions/tourbot/tour/model"
)

type Service struct {
	store contractx.Store
}

func New(store contractx.Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListActiveTours(ctx context.Context) ([]modelx.TourDate, error) {
	return s.store.ListActiveTours(ctx)
}

func (s *Service) ListCourses(ctx context.Context) ([]modelx.Course, error) {
	return s.store.ListCourses(ctx)
}

// ResolveTour maps a free-form selector (index, ordinal or date text) to
// an active tour. Returns contractx.ErrNotFound when nothing matches.
func (s *Service) ResolveTour(ctx context.Context, selector string) (modelx.TourDate, error) {
	tours, err := s.store.ListActiveTours(ctx)
	if err != nil {
		return modelx.TourDate{}, err
	}
	tour, ok := matchx.Tour(tours, selector)
	if !ok {
		return modelx.TourDate{}, fmt.Errorf("%w: tour selector %q", contractx.ErrNotFound, selector)
	}
	return tour, nil
}

// ReserveInterest normalizes the requested grades and applies one
// capacity decision per grade. Unmatched grades are skipped silently.
func (s *Service) ReserveInterest(ctx context.Context, grades []string) (contractx.ReserveOutcome, error) {
	normalized := normalizeGrades(grades)
	if len(normalized) == 0 {
		return contractx.ReserveOutcome{}, nil
	}
	return s.store.ReserveInterest(ctx, normalized)
}

// RegisterUser runs the full registration pipeline. Caller mistakes
// (missing fields, unresolvable tour) come back as an error-status
// result for the collaborator to render; storage failures surface as
// Go errors.
func (s *Service) RegisterUser(ctx context.Context, args contractx.RegisterArgs) (contractx.RegisterResult, error) {
	name := strings.TrimSpace(args.Name)
	email := strings.TrimSpace(args.Email)
	phone := strings.TrimSpace(args.Phone)
	if name == "" || email == "" || phone == "" {
		return errResult("missing required contact fields"), nil
	}

	tour, result, err := s.pickTour(ctx, args)
	if err != nil {
		return contractx.RegisterResult{}, err
	}
	if result != nil {
		return *result, nil
	}

	grades := normalizeGrades(args.Grades)
	var outcome contractx.ReserveOutcome
	if len(grades) > 0 {
		outcome, err = s.store.ReserveInterest(ctx, grades)
		if err != nil {
			return contractx.RegisterResult{}, err
		}
	}

	first, last := splitName(name)
	person := contractx.Person{
		FirstName:     first,
		LastName:      last,
		Email:         email,
		Phone:         phone,
		GradeInterest: strings.Join(grades, ", "),
	}

	reg, waitListed, err := s.store.CreateRegistration(ctx, tour, person, outcome.WaitListed)
	if err != nil {
		if errors.Is(err, contractx.ErrNotFound) {
			return errResult("tour date is no longer available"), nil
		}
		return contractx.RegisterResult{}, err
	}

	log.Info().
		Int64("registration_id", reg.ID).
		Int64("tour_date_id", tour.ID).
		Bool("wait_listed", waitListed).
		Msg("registration created")

	return contractx.RegisterResult{
		Status:         contractx.StatusSuccess,
		RegistrationID: reg.ID,
		WaitListed:     waitListed,
		TourDate:       tour.Date.Format("2006-01-02"),
	}, nil
}

// pickTour resolves the tour reference from RegisterArgs. A nil result
// with a zero error means tour is valid; a non-nil result is a caller
// mistake already rendered as an error outcome.
func (s *Service) pickTour(ctx context.Context, args contractx.RegisterArgs) (modelx.TourDate, *contractx.RegisterResult, error) {
	if args.TourDateID > 0 {
		tours, err := s.store.ListActiveTours(ctx)
		if err != nil {
			return modelx.TourDate{}, nil, err
		}
		for _, t := range tours {
			if t.ID == args.TourDateID {
				return t, nil, nil
			}
		}
		r := errResult(fmt.Sprintf("tour_date_id %d does not reference an active tour", args.TourDateID))
		return modelx.TourDate{}, &r, nil
	}

	if selector := strings.TrimSpace(args.TourSelector); selector != "" {
		tour, err := s.ResolveTour(ctx, selector)
		if err != nil {
			if errors.Is(err, contractx.ErrNotFound) {
				r := errResult(fmt.Sprintf("no active tour matches %q", selector))
				return modelx.TourDate{}, &r, nil
			}
			return modelx.TourDate{}, nil, err
		}
		return tour, nil, nil
	}

	r := errResult("missing tour reference")
	return modelx.TourDate{}, &r, nil
}

func errResult(msg string) contractx.RegisterResult {
	return contractx.RegisterResult{Status: contractx.StatusError, Message: msg}
}

// normalizeGrades flattens possibly comma-joined grade entries into a
// clean list.
func normalizeGrades(grades []string) []string {
	var out []string
	for _, entry := range grades {
		for _, part := range strings.Split(entry, ",") {
			if g := strings.TrimSpace(part); g != "" {
				out = append(out, g)
			}
		}
	}
	return out
}

// splitName separates a full name on the first whitespace run.
func splitName(name string) (first, last string) {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return "", ""
	}
	return fields[0], strings.Join(fields[1:], " ")
}
