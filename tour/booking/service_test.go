package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/sam-admissions/tourbot/tour/contract"
	modelx "github.com/sam-admissions/tourbot/tour/model"
)

type fakeStore struct {
	tours   []modelx.TourDate
	courses []modelx.Course

	listErr    error
	reserveErr error
	createErr  error

	reserveOutcome contractx.ReserveOutcome
	reservedGrades [][]string

	created     []contractx.Person
	createdTour modelx.TourDate
	forcedWait  bool
	nextRegID   int64
}

func (f *fakeStore) ListActiveTours(ctx context.Context) ([]modelx.TourDate, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.tours, nil
}

func (f *fakeStore) ListCourses(ctx context.Context) ([]modelx.Course, error) {
	return f.courses, nil
}

func (f *fakeStore) ReserveInterest(ctx context.Context, grades []string) (contractx.ReserveOutcome, error) {
	if f.reserveErr != nil {
		return contractx.ReserveOutcome{}, f.reserveErr
	}
	f.reservedGrades = append(f.reservedGrades, grades)
	return f.reserveOutcome, nil
}

func (f *fakeStore) CreateRegistration(ctx context.Context, tour modelx.TourDate, person contractx.Person, forceWaitListed bool) (modelx.Registration, bool, error) {
	if f.createErr != nil {
		return modelx.Registration{}, false, f.createErr
	}
	f.created = append(f.created, person)
	f.createdTour = tour
	f.forcedWait = forceWaitListed

	f.nextRegID++
	return modelx.Registration{
		ID:            f.nextRegID,
		FirstName:     person.FirstName,
		LastName:      person.LastName,
		Email:         person.Email,
		Phone:         person.Phone,
		GradeInterest: person.GradeInterest,
		TourDateID:    tour.ID,
		WaitListed:    forceWaitListed,
	}, forceWaitListed, nil
}

func openTours() []modelx.TourDate {
	return []modelx.TourDate{
		{ID: 1, Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), Capacity: 10, Status: modelx.StatusOpen},
		{ID: 2, Date: time.Date(2024, time.June, 4, 0, 0, 0, 0, time.UTC), Capacity: 12, Status: modelx.StatusOpen},
	}
}

func TestRegisterUserSuccess(t *testing.T) {
	t.Parallel()

	store := &fakeStore{tours: openTours()}
	svc := New(store)

	result, err := svc.RegisterUser(context.Background(), contractx.RegisterArgs{
		Name:       "Maria Fernanda Lopez",
		Email:      "maria@example.com",
		Phone:      "0991234567",
		Grades:     []string{"Inicial, 1° EGB"},
		TourDateID: 2,
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if !result.OK() {
		t.Fatalf("result = %+v, want success", result)
	}
	if result.RegistrationID != 1 {
		t.Fatalf("registration id = %d, want 1", result.RegistrationID)
	}
	if result.TourDate != "2024-06-04" {
		t.Fatalf("tour date = %q, want 2024-06-04", result.TourDate)
	}
	if result.WaitListed {
		t.Fatal("open tour should not wait-list")
	}

	if len(store.created) != 1 {
		t.Fatalf("created %d registrations, want 1", len(store.created))
	}
	person := store.created[0]
	if person.FirstName != "Maria" || person.LastName != "Fernanda Lopez" {
		t.Fatalf("name split = %q / %q", person.FirstName, person.LastName)
	}
	if person.GradeInterest != "Inicial, 1° EGB" {
		t.Fatalf("grade interest = %q", person.GradeInterest)
	}
	if len(store.reservedGrades) != 1 || len(store.reservedGrades[0]) != 2 {
		t.Fatalf("reserved grades = %v, want one batch of two", store.reservedGrades)
	}
}

func TestRegisterUserResolvesSelector(t *testing.T) {
	t.Parallel()

	store := &fakeStore{tours: openTours()}
	svc := New(store)

	result, err := svc.RegisterUser(context.Background(), contractx.RegisterArgs{
		Name:         "Ana Paz",
		Email:        "ana@example.com",
		Phone:        "0990000000",
		TourSelector: "segunda",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if !result.OK() {
		t.Fatalf("result = %+v, want success", result)
	}
	if store.createdTour.ID != 2 {
		t.Fatalf("registered tour id = %d, want 2", store.createdTour.ID)
	}
}

func TestRegisterUserMissingFields(t *testing.T) {
	t.Parallel()

	svc := New(&fakeStore{tours: openTours()})

	for _, args := range []contractx.RegisterArgs{
		{Email: "a@b.c", Phone: "099", TourDateID: 1},
		{Name: "Ana", Phone: "099", TourDateID: 1},
		{Name: "Ana", Email: "a@b.c", TourDateID: 1},
		{Name: "   ", Email: "a@b.c", Phone: "099", TourDateID: 1},
	} {
		result, err := svc.RegisterUser(context.Background(), args)
		if err != nil {
			t.Fatalf("RegisterUser(%+v): %v", args, err)
		}
		if result.OK() {
			t.Fatalf("result = %+v, want error status", result)
		}
	}
}

func TestRegisterUserUnknownTourID(t *testing.T) {
	t.Parallel()

	store := &fakeStore{tours: openTours()}
	svc := New(store)

	result, err := svc.RegisterUser(context.Background(), contractx.RegisterArgs{
		Name:       "Ana Paz",
		Email:      "ana@example.com",
		Phone:      "099",
		TourDateID: 77,
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if result.OK() {
		t.Fatalf("result = %+v, want error status", result)
	}
	if len(store.created) != 0 {
		t.Fatal("no registration should be created for an unknown tour id")
	}
}

func TestRegisterUserUnresolvableSelector(t *testing.T) {
	t.Parallel()

	svc := New(&fakeStore{tours: openTours()})

	result, err := svc.RegisterUser(context.Background(), contractx.RegisterArgs{
		Name:         "Ana Paz",
		Email:        "ana@example.com",
		Phone:        "099",
		TourSelector: "algún día",
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if result.OK() {
		t.Fatalf("result = %+v, want error status", result)
	}
	if !strings.Contains(result.Message, "algún día") {
		t.Fatalf("message %q should name the selector", result.Message)
	}
}

func TestRegisterUserWaitListedByLedger(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		tours:          openTours(),
		reserveOutcome: contractx.ReserveOutcome{WaitListed: true},
	}
	svc := New(store)

	result, err := svc.RegisterUser(context.Background(), contractx.RegisterArgs{
		Name:       "Ana Paz",
		Email:      "ana@example.com",
		Phone:      "099",
		Grades:     []string{"4° EGB"},
		TourDateID: 1,
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if !result.OK() || !result.WaitListed {
		t.Fatalf("result = %+v, want wait-listed success", result)
	}
	if !store.forcedWait {
		t.Fatal("ledger wait-list must be forced through to the registration")
	}
}

func TestRegisterUserFullTourStaysUnlisted(t *testing.T) {
	t.Parallel()

	store := &fakeStore{
		tours: []modelx.TourDate{
			{ID: 1, Date: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC), Capacity: 10, Registered: 10, Status: modelx.StatusOpen},
		},
	}
	svc := New(store)

	result, err := svc.RegisterUser(context.Background(), contractx.RegisterArgs{
		Name:       "Ana Paz",
		Email:      "ana@example.com",
		Phone:      "099",
		TourDateID: 1,
	})
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if !result.OK() {
		t.Fatalf("result = %+v, want success", result)
	}
	// Tour capacity never forces the flag; only the grade ledger does.
	if result.WaitListed {
		t.Fatal("full tour must not wait-list on its own")
	}
	if store.forcedWait {
		t.Fatal("forceWaitListed must stay false without a ledger waitlist")
	}
}

func TestRegisterUserStorageErrorPropagates(t *testing.T) {
	t.Parallel()

	boom := fmt.Errorf("%w: down", contractx.ErrStorage)
	svc := New(&fakeStore{tours: openTours(), createErr: boom})

	_, err := svc.RegisterUser(context.Background(), contractx.RegisterArgs{
		Name:       "Ana Paz",
		Email:      "ana@example.com",
		Phone:      "099",
		TourDateID: 1,
	})
	if !errors.Is(err, contractx.ErrStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}
}

func TestResolveTourNotFound(t *testing.T) {
	t.Parallel()

	svc := New(&fakeStore{tours: openTours()})

	_, err := svc.ResolveTour(context.Background(), "nunca")
	if !errors.Is(err, contractx.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestReserveInterestSkipsEmptyBatch(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	svc := New(store)

	outcome, err := svc.ReserveInterest(context.Background(), []string{" ", ", ,"})
	if err != nil {
		t.Fatalf("ReserveInterest: %v", err)
	}
	if outcome.WaitListed || len(outcome.Matched) != 0 {
		t.Fatalf("outcome = %+v, want empty", outcome)
	}
	if len(store.reservedGrades) != 0 {
		t.Fatal("store must not be called for an empty batch")
	}
}

func TestNormalizeGrades(t *testing.T) {
	t.Parallel()

	got := normalizeGrades([]string{" Inicial ,2° EGB", "", "3° EGB"})
	want := []string{"Inicial", "2° EGB", "3° EGB"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
