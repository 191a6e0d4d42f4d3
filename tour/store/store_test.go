package store

import (
	"testing"
	"time"

	contractx "github.com/sam-admissions/tourbot/tour/contract"
	modelx "github.com/sam-admissions/tourbot/tour/model"
)

func TestSeedTourDatesCadence(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.May, 31, 17, 45, 3, 0, time.UTC)
	seeds := seedTourDates(now, 4)

	if len(seeds) != 4 {
		t.Fatalf("got %d seeds, want 4", len(seeds))
	}

	wantDates := []time.Time{
		time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 7, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
	}
	wantCaps := []int{10, 12, 10, 12}

	for i, seed := range seeds {
		if !seed.Date.Equal(wantDates[i]) {
			t.Fatalf("seed %d date = %s, want %s", i, seed.Date, wantDates[i])
		}
		if seed.Capacity != wantCaps[i] {
			t.Fatalf("seed %d capacity = %d, want %d", i, seed.Capacity, wantCaps[i])
		}
		if seed.Status != modelx.StatusOpen {
			t.Fatalf("seed %d status = %q, want open", i, seed.Status)
		}
		if seed.Registered != 0 {
			t.Fatalf("seed %d registered = %d, want 0", i, seed.Registered)
		}
	}
}

func TestSeedTourDatesTruncatesToMidnight(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)
	seeds := seedTourDates(now, 1)
	if len(seeds) != 1 {
		t.Fatalf("got %d seeds, want 1", len(seeds))
	}
	want := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	if !seeds[0].Date.Equal(want) {
		t.Fatalf("seed date = %s, want %s", seeds[0].Date, want)
	}
}

func TestSeedTourDatesZeroDays(t *testing.T) {
	t.Parallel()

	if seeds := seedTourDates(time.Now(), 0); len(seeds) != 0 {
		t.Fatalf("got %d seeds, want none", len(seeds))
	}
}

func ledgerCourses() []modelx.Course {
	return []modelx.Course{
		{ID: 1, Name: "Inicial", CapacityAvailable: 6},
		{ID: 2, Name: "3° EGB", CapacityAvailable: 1},
		{ID: 3, Name: "4° EGB", CapacityAvailable: 0, WaitlistCount: 2},
	}
}

func TestReserveGradeTakesSeat(t *testing.T) {
	t.Parallel()

	courses := ledgerCourses()
	i, res, ok := reserveGrade(courses, "Inicial")
	if !ok || i != 0 {
		t.Fatalf("ok = %v index = %d, want match at 0", ok, i)
	}
	if res.Status != contractx.GradeAvailable || res.Course != "Inicial" {
		t.Fatalf("reservation = %+v", res)
	}
	if courses[0].CapacityAvailable != 5 {
		t.Fatalf("capacity = %d, want decrement by exactly 1", courses[0].CapacityAvailable)
	}
	if courses[0].WaitlistCount != 0 {
		t.Fatalf("waitlist = %d, want untouched", courses[0].WaitlistCount)
	}
}

func TestReserveGradeFullCourseWaitlists(t *testing.T) {
	t.Parallel()

	courses := ledgerCourses()
	i, res, ok := reserveGrade(courses, "4° EGB")
	if !ok || i != 2 {
		t.Fatalf("ok = %v index = %d, want match at 2", ok, i)
	}
	if res.Status != contractx.GradeWaitlist {
		t.Fatalf("reservation = %+v, want waitlist", res)
	}
	if courses[2].WaitlistCount != 3 {
		t.Fatalf("waitlist = %d, want increment by exactly 1", courses[2].WaitlistCount)
	}
	if courses[2].CapacityAvailable != 0 {
		t.Fatalf("capacity = %d, want untouched", courses[2].CapacityAvailable)
	}
}

func TestReserveGradeRepeatedSeesEarlierDecision(t *testing.T) {
	t.Parallel()

	courses := ledgerCourses()
	if _, res, _ := reserveGrade(courses, "3° EGB"); res.Status != contractx.GradeAvailable {
		t.Fatalf("first reservation = %+v, want available", res)
	}
	// The last seat is gone within the batch, so the repeat waitlists.
	if _, res, _ := reserveGrade(courses, "3° EGB"); res.Status != contractx.GradeWaitlist {
		t.Fatalf("second reservation = %+v, want waitlist", res)
	}
	if courses[1].CapacityAvailable != 0 || courses[1].WaitlistCount != 1 {
		t.Fatalf("course = %+v, want 0 seats and 1 waitlisted", courses[1])
	}
}

func TestReserveGradeUnmatchedLeavesLedgerAlone(t *testing.T) {
	t.Parallel()

	courses := ledgerCourses()
	if i, _, ok := reserveGrade(courses, "Bachillerato"); ok || i != -1 {
		t.Fatalf("ok = %v index = %d, want no match", ok, i)
	}
	for i, course := range ledgerCourses() {
		if courses[i] != course {
			t.Fatalf("course %d changed to %+v", i, courses[i])
		}
	}
}
