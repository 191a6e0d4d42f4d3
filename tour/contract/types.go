package contract

const (
	GradeAvailable = "available"
	GradeWaitlist  = "waitlist"
)

// Person carries the personal fields persisted on a registration row.
type Person struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name,omitempty"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	GradeInterest string `json:"grade_interest"`
}

// GradeReservation records the outcome for one matched grade.
type GradeReservation struct {
	Course string `json:"course"`
	Status string `json:"status"`
}

// ReserveOutcome summarizes a capacity-ledger batch. WaitListed is true
// when at least one matched grade had no capacity left.
type ReserveOutcome struct {
	WaitListed bool               `json:"wait_listed"`
	Matched    []GradeReservation `json:"matched,omitempty"`
}

// RegisterArgs is the structured intent payload supplied by the chat
// collaborator. Either TourDateID or TourSelector must identify the tour.
type RegisterArgs struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Grades       []string `json:"grades,omitempty"`
	TourDateID   int64    `json:"tour_date_id,omitempty"`
	TourSelector string   `json:"tour_selector,omitempty"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// RegisterResult is the structured outcome handed back to the collaborator
// for natural-language rendering.
type RegisterResult struct {
	Status         string `json:"status"`
	RegistrationID int64  `json:"registration_id,omitempty"`
	WaitListed     bool   `json:"wait_listed"`
	TourDate       string `json:"tour_date,omitempty"`
	Message        string `json:"message,omitempty"`
}

func (r RegisterResult) OK() bool {
	return r.Status == StatusSuccess
}
