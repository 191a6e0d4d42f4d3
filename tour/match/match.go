// Package match implements the pure text-matching heuristics that map
// free-form user input to tour dates and grade courses. It has no storage
// dependency so the heuristics can be tested against fixed tables.
package match

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	modelx "github.com/sam-admissions/tourbot/tour/model"
)

type ordinal struct {
	keyword string
	index   int
}

// Spanish ordinal keywords up to the fifth slot. Matching is substring
// based, so order here decides ties.
var ordinalKeywords = []ordinal{
	{"primera", 1},
	{"primer", 1},
	{"segunda", 2},
	{"segundo", 2},
	{"tercera", 3},
	{"tercer", 3},
	{"cuarta", 4},
	{"cuarto", 4},
	{"quinta", 5},
	{"quinto", 5},
}

// Tour resolves free-form input against the ordered active-tour list.
// Checked in strict order, first match wins:
//
//  1. bare non-negative integer, used as a 1-based index
//  2. ordinal keyword substring (primera, segunda, ...)
//  3. input as a string prefix of any of four date renderings
//  4. leniently parsed calendar date matched by exact day
//
// The caller supplies tours ordered by date ascending; index lookups
// depend on that ordering.
func Tour(tours []modelx.TourDate, input string) (modelx.TourDate, bool) {
	choice := strings.ToLower(strings.TrimSpace(input))
	if len(tours) == 0 || choice == "" {
		return modelx.TourDate{}, false
	}

	if isDigits(choice) {
		if n, err := strconv.Atoi(choice); err == nil {
			if idx := n - 1; idx >= 0 && idx < len(tours) {
				return tours[idx], true
			}
		}
	}

	for _, ord := range ordinalKeywords {
		if strings.Contains(choice, ord.keyword) {
			if idx := ord.index - 1; idx >= 0 && idx < len(tours) {
				return tours[idx], true
			}
		}
	}

	for _, tour := range tours {
		for _, option := range dateOptions(tour.Date) {
			if strings.HasPrefix(option, choice) {
				return tour, true
			}
		}
	}

	if day, err := dateparse.ParseStrict(input); err == nil {
		for _, tour := range tours {
			if sameDay(tour.Date, day) {
				return tour, true
			}
		}
	}

	return modelx.TourDate{}, false
}

// dateOptions renders the four representations users tend to type:
// day/month/year, ISO, day/month, and the bare day of month.
func dateOptions(date time.Time) [4]string {
	return [4]string{
		date.Format("02/01/2006"),
		date.Format("2006-01-02"),
		date.Format("02/01"),
		strconv.Itoa(date.Day()),
	}
}

// CourseIndex matches a requested grade against the course list and
// returns its index, or -1 when nothing matches. Exact name match wins,
// then containment in either direction; first structural match in listing
// order takes it.
func CourseIndex(courses []modelx.Course, grade string) int {
	g := strings.ToLower(strings.TrimSpace(grade))
	if g == "" {
		return -1
	}
	for i := range courses {
		name := strings.ToLower(courses[i].Name)
		if g == name {
			return i
		}
		if strings.Contains(name, g) || strings.Contains(g, name) {
			return i
		}
	}
	return -1
}

// Course is a convenience wrapper over CourseIndex.
func Course(courses []modelx.Course, grade string) (modelx.Course, bool) {
	if i := CourseIndex(courses, grade); i >= 0 {
		return courses[i], true
	}
	return modelx.Course{}, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}
