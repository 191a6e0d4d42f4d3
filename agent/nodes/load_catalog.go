package tourbotnode

import (
	"context"
	"encoding/json"
	"fmt"

	contractx "github.com/sam-admissions/tourbot/agent/contract"
)

type tourContextEntry struct {
	Index          int    `json:"index"`
	ID             int64  `json:"id"`
	Date           string `json:"date"`
	AvailableSlots int    `json:"available_slots"`
}

// LoadCatalog reads the active tours and course capacities and renders
// the context the chat model is grounded on every turn.
func LoadCatalog(ctx context.Context, in *GraphState, directory contractx.TourDirectory) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	tours, err := directory.ListActiveTours(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := directory.ListCourses(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]tourContextEntry, 0, len(tours))
	suggestions := make([]string, 0, len(tours))
	for i := range tours {
		tour := &tours[i]
		entries = append(entries, tourContextEntry{
			Index:          i + 1,
			ID:             tour.ID,
			Date:           tour.Date.Format("02/01/2006"),
			AvailableSlots: tour.AvailableSlots(),
		})
		suggestions = append(suggestions, fmt.Sprintf("%d. %s · Cupo abierto", i+1, tour.Date.Format("02/01/2006")))
	}

	capacity := make(map[string]int, len(courses))
	for i := range courses {
		available := courses[i].CapacityAvailable
		if available < 0 {
			available = 0
		}
		capacity[courses[i].Name] = available
	}

	tourJSON, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal tour context: %v", contractx.ErrValidation, err)
	}
	capacityJSON, err := json.Marshal(capacity)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal capacity context: %v", contractx.ErrValidation, err)
	}

	in.Tours = tours
	in.TourContext = string(tourJSON)
	in.CapacityContext = string(capacityJSON)
	in.Suggestions = suggestions
	return in, nil
}
