// Package model defines the persisted domain records for tour bookings.
package model

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// TourDate is a bookable calendar slot for a school visit. The registered
// counter may exceed capacity; over-booking is not rejected here.
type TourDate struct {
	bun.BaseModel `bun:"table:tour_dates,alias:td"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Date       time.Time `bun:"date,notnull,unique,type:date" json:"date"`
	Capacity   int       `bun:"capacity,notnull,default:12" json:"capacity"`
	Registered int       `bun:"registered,notnull,default:0" json:"registered"`
	Status     string    `bun:"status,notnull,default:'open'" json:"status"`
}

// AvailableSlots returns the remaining seats, clamped at zero.
func (t *TourDate) AvailableSlots() int {
	if remaining := t.Capacity - t.Registered; remaining > 0 {
		return remaining
	}
	return 0
}

// Course is a grade-level admission ledger, independent of tour seats.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	ID                int64  `bun:"id,pk,autoincrement" json:"id"`
	Name              string `bun:"name,notnull,unique" json:"name"`
	CapacityAvailable int    `bun:"capacity_available,notnull,default:0" json:"capacity_available"`
	WaitlistCount     int    `bun:"waitlist_count,notnull,default:0" json:"waitlist_count"`
}

// IsFull reports whether new interest for this grade goes to the waitlist.
func (c *Course) IsFull() bool {
	return c.CapacityAvailable <= 0
}

// Registration is a single family's registration for a tour date.
// Rows are immutable once created.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r"`

	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	FirstName     string `bun:"first_name,notnull" json:"first_name"`
	LastName      string `bun:"last_name" json:"last_name"`
	Email         string `bun:"email,notnull" json:"email"`
	Phone         string `bun:"phone,notnull" json:"phone"`
	GradeInterest string `bun:"grade_interest,notnull" json:"grade_interest"`
	TourDateID    int64  `bun:"tour_date_id,notnull" json:"tour_date_id"`
	WaitListed    bool   `bun:"wait_listed,notnull,default:false" json:"wait_listed"`
}
