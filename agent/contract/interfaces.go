package contract

import (
	"context"

	tourcontract "github.com/sam-admissions/tourbot/tour/contract"
	modelx "github.com/sam-admissions/tourbot/tour/model"
)

// Registrar executes structured registrations on behalf of the chat
// layer.
type Registrar interface {
	RegisterUser(ctx context.Context, args tourcontract.RegisterArgs) (tourcontract.RegisterResult, error)
}

// TourDirectory exposes the catalog reads the chat layer needs to
// ground its replies.
type TourDirectory interface {
	ListActiveTours(ctx context.Context) ([]modelx.TourDate, error)
	ListCourses(ctx context.Context) ([]modelx.Course, error)
}

// Extractor distills a registration draft from recent conversation
// turns. Implementations must degrade to an empty draft on model
// failure rather than blocking the reply.
type Extractor interface {
	Extract(ctx context.Context, turnsText string, previous RegistrationDraft) (RegistrationDraft, error)
}

// Notifier publishes registration confirmations to an external channel.
// Delivery is best-effort.
type Notifier interface {
	RegistrationCreated(ctx context.Context, result tourcontract.RegisterResult, email string) error
}
