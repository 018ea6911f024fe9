package usecase

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
)

func generationPayload() *adapter.GeneratedPlan {
	return &adapter.GeneratedPlan{
		StartDate:   "2026-04-01",
		EndDate:     "2026-04-03",
		TripDays:    3,
		Nights:      2,
		PeopleCount: 2,
		Tags:        []string{"food", "history"},
		Title:       "Kyoto in three days",
		Summary:     "Temples, markets and one quiet morning.",
		Itinerary: []adapter.DayNode{
			{DayNumber: 2, DailyDate: "2026-04-02", Places: []adapter.PlaceNode{
				{PlaceName: "Nishiki Market", VisitSequence: 1},
				{PlaceName: "Gion Walk", VisitSequence: 2},
			}},
			{DayNumber: 1, DailyDate: "2026-04-01", Places: []adapter.PlaceNode{
				{PlaceName: "Fushimi Inari", VisitSequence: 2},
				{PlaceName: "Kiyomizu-dera", VisitSequence: 1},
			}},
			{DayNumber: 3, DailyDate: "2026-04-03", Places: []adapter.PlaceNode{
				{PlaceName: "Arashiyama Bamboo Grove", VisitSequence: 1},
				{PlaceName: "Tenryu-ji", VisitSequence: 2},
			}},
		},
	}
}

func TestBuildItineraryOrdersTree(t *testing.T) {
	t.Parallel()
	m := NewMaterializer()

	it, err := m.BuildItinerary("owner-1", generationPayload())
	if err != nil {
		t.Fatalf("BuildItinerary: %v", err)
	}

	if it.OwnerID != "owner-1" || it.ID == "" {
		t.Fatalf("bad header: %+v", it)
	}
	if len(it.Days) != 3 || it.PlaceCount() != 6 {
		t.Fatalf("got %d days, %d places", len(it.Days), it.PlaceCount())
	}
	for i, d := range it.Days {
		if d.DayNumber != i+1 {
			t.Errorf("day %d has day_number %d", i, d.DayNumber)
		}
		if d.ItineraryID != it.ID {
			t.Errorf("day %d not linked to itinerary", i)
		}
		for j, p := range d.Places {
			if p.VisitSequence != j+1 {
				t.Errorf("day %d place %d has visit_sequence %d", i, j, p.VisitSequence)
			}
			if p.DayID != d.ID {
				t.Errorf("day %d place %d not linked to day", i, j)
			}
			if p.ID == "" {
				t.Errorf("day %d place %d has no id", i, j)
			}
		}
	}
	if it.Days[0].Places[0].Name != "Kiyomizu-dera" {
		t.Errorf("day 1 first place = %q", it.Days[0].Places[0].Name)
	}
}

func TestBuildItineraryRejectsBadDates(t *testing.T) {
	t.Parallel()
	m := NewMaterializer()

	plan := generationPayload()
	plan.StartDate = "01-04-2026"
	if _, err := m.BuildItinerary("owner-1", plan); !errors.Is(err, domain.ErrInvalidCallbackPayload) {
		t.Fatalf("err = %v, want ErrInvalidCallbackPayload", err)
	}

	plan = generationPayload()
	plan.Itinerary[0].DailyDate = "not-a-date"
	if _, err := m.BuildItinerary("owner-1", plan); !errors.Is(err, domain.ErrInvalidCallbackPayload) {
		t.Fatalf("err = %v, want ErrInvalidCallbackPayload", err)
	}
}

// storedItinerary builds a two-day tree with stable node keys for patch tests.
func storedItinerary() *model.Itinerary {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return &model.Itinerary{
		ID:        "it-1",
		OwnerID:   "owner-1",
		Title:     "Kyoto trip",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
		TripDays:  2,
		Nights:    1,
		Days: []model.ItineraryDay{
			{ID: "day-1", ItineraryID: "it-1", DayNumber: 1, Date: start, Places: []model.ItineraryPlace{
				{ID: "place-1a", DayID: "day-1", Name: "Kiyomizu-dera", VisitSequence: 1},
				{ID: "place-1b", DayID: "day-1", Name: "Fushimi Inari", VisitSequence: 2},
			}},
			{ID: "day-2", ItineraryID: "it-1", DayNumber: 2, Date: start.AddDate(0, 0, 1), Places: []model.ItineraryPlace{
				{ID: "place-2a", DayID: "day-2", Name: "Nishiki Market", VisitSequence: 1},
				{ID: "place-2b", DayID: "day-2", Name: "Gion Walk", VisitSequence: 2},
			}},
		},
	}
}

func TestPatchItineraryReplacesOnlyDiffNodes(t *testing.T) {
	t.Parallel()
	m := NewMaterializer()
	existing := storedItinerary()

	// The planner sends the full tree back, with one place changed. Untouched
	// nodes carry altered fields on purpose: they must not stick.
	payload := []adapter.DayNode{
		{NodeKey: "day-1", DayNumber: 1, DailyDate: "2026-04-01", Places: []adapter.PlaceNode{
			{NodeKey: "place-1a", PlaceName: "RENAMED BY PLANNER", VisitSequence: 1},
			{NodeKey: "place-1b", PlaceName: "Fushimi Inari", VisitSequence: 2},
		}},
		{NodeKey: "day-2", DayNumber: 2, DailyDate: "2026-04-02", Places: []adapter.PlaceNode{
			{NodeKey: "place-2a", PlaceName: "Ramen Alley", Description: "swap lunch", VisitSequence: 1},
			{NodeKey: "place-2b", PlaceName: "Gion Walk", VisitSequence: 2},
		}},
	}

	patched, err := m.PatchItinerary(existing, payload, []string{"place-2a"})
	if err != nil {
		t.Fatalf("PatchItinerary: %v", err)
	}

	if got := patched.Days[1].Places[0].Name; got != "Ramen Alley" {
		t.Errorf("diff place name = %q", got)
	}
	// place-1a was not in diff_keys: the planner's rename must not apply.
	if got := patched.Days[0].Places[0].Name; got != "Kiyomizu-dera" {
		t.Errorf("untouched place name = %q", got)
	}
	if !reflect.DeepEqual(patched.Days[0], existing.Days[0]) {
		t.Errorf("untouched day changed: %+v", patched.Days[0])
	}
	// The input tree itself must stay pristine.
	if existing.Days[1].Places[0].Name != "Nishiki Market" {
		t.Errorf("existing tree mutated")
	}
}

func TestPatchItineraryInsertsAndRemoves(t *testing.T) {
	t.Parallel()
	m := NewMaterializer()
	existing := storedItinerary()

	// place-new exists only in the payload (insert); place-1b exists only in
	// the tree (remove).
	payload := []adapter.DayNode{
		{NodeKey: "day-2", DayNumber: 2, DailyDate: "2026-04-02", Places: []adapter.PlaceNode{
			{NodeKey: "place-2a", PlaceName: "Nishiki Market", VisitSequence: 1},
			{NodeKey: "place-new", PlaceName: "Pontocho Dinner", VisitSequence: 3},
		}},
	}

	patched, err := m.PatchItinerary(existing, payload, []string{"place-new", "place-1b"})
	if err != nil {
		t.Fatalf("PatchItinerary: %v", err)
	}

	if len(patched.Days[0].Places) != 1 || patched.Days[0].Places[0].ID != "place-1a" {
		t.Errorf("day-1 places after removal: %+v", patched.Days[0].Places)
	}
	day2 := patched.FindDay("day-2")
	if len(day2.Places) != 3 {
		t.Fatalf("day-2 places = %d, want 3", len(day2.Places))
	}
	if day2.Places[2].ID != "place-new" || day2.Places[2].Name != "Pontocho Dinner" {
		t.Errorf("inserted place = %+v", day2.Places[2])
	}
}

func TestPatchItineraryRemovesWholeDay(t *testing.T) {
	t.Parallel()
	m := NewMaterializer()

	patched, err := m.PatchItinerary(storedItinerary(), nil, []string{"day-2"})
	if err != nil {
		t.Fatalf("PatchItinerary: %v", err)
	}
	if len(patched.Days) != 1 || patched.Days[0].ID != "day-1" {
		t.Errorf("days after removal: %+v", patched.Days)
	}
}

func TestPatchItineraryUnknownDiffKey(t *testing.T) {
	t.Parallel()
	m := NewMaterializer()

	_, err := m.PatchItinerary(storedItinerary(), nil, []string{"no-such-node"})
	if !errors.Is(err, domain.ErrDiffKeyNotFound) {
		t.Fatalf("err = %v, want ErrDiffKeyNotFound", err)
	}
}

func TestPatchItineraryInsertsDay(t *testing.T) {
	t.Parallel()
	m := NewMaterializer()

	payload := []adapter.DayNode{
		{NodeKey: "day-3", DayNumber: 3, DailyDate: "2026-04-03", Places: []adapter.PlaceNode{
			{PlaceName: "Arashiyama Bamboo Grove", VisitSequence: 1},
		}},
	}
	patched, err := m.PatchItinerary(storedItinerary(), payload, []string{"day-3"})
	if err != nil {
		t.Fatalf("PatchItinerary: %v", err)
	}
	if len(patched.Days) != 3 {
		t.Fatalf("days = %d, want 3", len(patched.Days))
	}
	day3 := patched.FindDay("day-3")
	if day3 == nil || day3.DayNumber != 3 || len(day3.Places) != 1 {
		t.Fatalf("inserted day = %+v", day3)
	}
	if day3.Places[0].DayID != "day-3" {
		t.Errorf("inserted place not linked to new day")
	}
}

func TestPatchItinerarySwapsDayNumbers(t *testing.T) {
	t.Parallel()
	m := NewMaterializer()

	// Both days change number; the planner swapped the schedule around.
	payload := []adapter.DayNode{
		{NodeKey: "day-1", DayNumber: 2, DailyDate: "2026-04-02", Places: []adapter.PlaceNode{
			{NodeKey: "place-1a", PlaceName: "Kiyomizu-dera", VisitSequence: 1},
			{NodeKey: "place-1b", PlaceName: "Fushimi Inari", VisitSequence: 2},
		}},
		{NodeKey: "day-2", DayNumber: 1, DailyDate: "2026-04-01", Places: []adapter.PlaceNode{
			{NodeKey: "place-2a", PlaceName: "Nishiki Market", VisitSequence: 1},
			{NodeKey: "place-2b", PlaceName: "Gion Walk", VisitSequence: 2},
		}},
	}
	patched, err := m.PatchItinerary(storedItinerary(), payload, []string{"day-1", "day-2"})
	if err != nil {
		t.Fatalf("PatchItinerary: %v", err)
	}
	if len(patched.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(patched.Days))
	}
	// Sorted by day_number, so day-2 comes first after the swap.
	if patched.Days[0].ID != "day-2" || patched.Days[0].DayNumber != 1 {
		t.Errorf("first day = %s number %d", patched.Days[0].ID, patched.Days[0].DayNumber)
	}
	if patched.Days[1].ID != "day-1" || patched.Days[1].DayNumber != 2 {
		t.Errorf("second day = %s number %d", patched.Days[1].ID, patched.Days[1].DayNumber)
	}
	if patched.Days[0].Places[0].ID != "place-2a" || patched.Days[1].Places[0].ID != "place-1a" {
		t.Errorf("places did not follow their days")
	}
}
