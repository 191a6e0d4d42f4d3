package contract

import (
	"context"

	modelx "github.com/sam-admissions/tourbot/tour/model"
)

// Store is the persistence contract of the registration core. Every read
// goes back to storage; callers must not cache TourDate or Course rows
// across operations.
type Store interface {
	ListActiveTours(ctx context.Context) ([]modelx.TourDate, error)
	ListCourses(ctx context.Context) ([]modelx.Course, error)
	ReserveInterest(ctx context.Context, grades []string) (ReserveOutcome, error)
	CreateRegistration(ctx context.Context, tour modelx.TourDate, person Person, forceWaitListed bool) (modelx.Registration, bool, error)
}
