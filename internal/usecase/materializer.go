package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
)

// Materializer turns validated planner payloads into itinerary trees. It is
// pure tree manipulation: persistence and transaction boundaries belong to the
// caller so the whole day/place set commits or none of it does.
type Materializer struct{}

func NewMaterializer() *Materializer { return &Materializer{} }

// BuildItinerary constructs a brand-new tree from a generation payload.
// Every day and place gets a fresh identifier; ownership is assigned to the
// requesting user.
func (m *Materializer) BuildItinerary(ownerID string, plan *adapter.GeneratedPlan) (*model.Itinerary, error) {
	start, err := time.Parse(adapter.DateLayout, plan.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start_date %q", domain.ErrInvalidCallbackPayload, plan.StartDate)
	}
	end, err := time.Parse(adapter.DateLayout, plan.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad end_date %q", domain.ErrInvalidCallbackPayload, plan.EndDate)
	}

	now := time.Now()
	it := &model.Itinerary{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       plan.Title,
		Summary:     plan.Summary,
		StartDate:   start,
		EndDate:     end,
		TripDays:    plan.TripDays,
		Nights:      plan.Nights,
		PeopleCount: plan.PeopleCount,
		Tags:        plan.Tags,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	days := append([]adapter.DayNode(nil), plan.Itinerary...)
	sort.SliceStable(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })

	for _, dn := range days {
		day, err := buildDay(it.ID, dn)
		if err != nil {
			return nil, err
		}
		it.Days = append(it.Days, *day)
	}
	return it, nil
}

// PatchItinerary applies a modification payload to an existing tree. Only
// nodes whose key appears in diffKeys change:
//   - key in payload and in the tree: the node's fields are replaced
//   - key in payload only: the node is inserted
//   - key in the tree only: the node is removed
//   - key in neither: domain.ErrDiffKeyNotFound
//
// Nodes not listed in diffKeys keep their stored values even if the payload
// carries them with different fields; the planner is not trusted to avoid
// regenerating the full tree.
func (m *Materializer) PatchItinerary(existing *model.Itinerary, days []adapter.DayNode, diffKeys []string) (*model.Itinerary, error) {
	it := cloneItinerary(existing)

	payloadDays := make(map[string]adapter.DayNode)
	payloadPlaces := make(map[string]adapter.PlaceNode)
	placeDayKey := make(map[string]string) // place key -> payload day key
	for _, dn := range days {
		if dn.NodeKey != "" {
			payloadDays[dn.NodeKey] = dn
		}
		for _, pn := range dn.Places {
			if pn.NodeKey != "" {
				payloadPlaces[pn.NodeKey] = pn
				placeDayKey[pn.NodeKey] = dn.NodeKey
			}
		}
	}

	for _, key := range diffKeys {
		if dn, ok := payloadDays[key]; ok {
			if err := patchDay(it, dn); err != nil {
				return nil, err
			}
			continue
		}
		if pn, ok := payloadPlaces[key]; ok {
			if err := patchPlace(it, pn, placeDayKey[key]); err != nil {
				return nil, err
			}
			continue
		}
		if removeNode(it, key) {
			continue
		}
		return nil, fmt.Errorf("%w: %q", domain.ErrDiffKeyNotFound, key)
	}

	sort.SliceStable(it.Days, func(i, j int) bool { return it.Days[i].DayNumber < it.Days[j].DayNumber })
	it.UpdatedAt = time.Now()
	return it, nil
}

func buildDay(itineraryID string, dn adapter.DayNode) (*model.ItineraryDay, error) {
	date, err := time.Parse(adapter.DateLayout, dn.DailyDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad daily_date %q", domain.ErrInvalidCallbackPayload, dn.DailyDate)
	}
	day := &model.ItineraryDay{
		ID:          uuid.NewString(),
		ItineraryID: itineraryID,
		DayNumber:   dn.DayNumber,
		Date:        date,
	}
	places := append([]adapter.PlaceNode(nil), dn.Places...)
	sort.SliceStable(places, func(i, j int) bool { return places[i].VisitSequence < places[j].VisitSequence })
	for _, pn := range places {
		day.Places = append(day.Places, newPlace(day.ID, pn))
	}
	return day, nil
}

func newPlace(dayID string, pn adapter.PlaceNode) model.ItineraryPlace {
	id := pn.NodeKey
	if id == "" {
		id = uuid.NewString()
	}
	return model.ItineraryPlace{
		ID:            id,
		DayID:         dayID,
		Name:          pn.PlaceName,
		ExternalID:    pn.PlaceID,
		Address:       pn.Address,
		Latitude:      pn.Latitude,
		Longitude:     pn.Longitude,
		URL:           pn.PlaceURL,
		Description:   pn.Description,
		VisitSequence: pn.VisitSequence,
		VisitTime:     pn.VisitTime,
	}
}

// patchDay replaces an existing day's fields and subtree, or inserts a new
// day under the planner-provided key.
func patchDay(it *model.Itinerary, dn adapter.DayNode) error {
	date, err := time.Parse(adapter.DateLayout, dn.DailyDate)
	if err != nil {
		return fmt.Errorf("%w: bad daily_date %q", domain.ErrInvalidCallbackPayload, dn.DailyDate)
	}

	day := it.FindDay(dn.NodeKey)
	if day == nil {
		it.Days = append(it.Days, model.ItineraryDay{ID: dn.NodeKey, ItineraryID: it.ID})
		day = &it.Days[len(it.Days)-1]
	}
	day.DayNumber = dn.DayNumber
	day.Date = date

	day.Places = day.Places[:0]
	places := append([]adapter.PlaceNode(nil), dn.Places...)
	sort.SliceStable(places, func(i, j int) bool { return places[i].VisitSequence < places[j].VisitSequence })
	for _, pn := range places {
		day.Places = append(day.Places, newPlace(day.ID, pn))
	}
	return nil
}

// patchPlace replaces a single place in place, or inserts it into the day the
// payload shows it under.
func patchPlace(it *model.Itinerary, pn adapter.PlaceNode, dayKey string) error {
	if _, p := it.FindPlace(pn.NodeKey); p != nil {
		dayID := p.DayID
		*p = newPlace(dayID, pn)
		sortDayPlaces(it, dayID)
		return nil
	}

	day := it.FindDay(dayKey)
	if day == nil {
		return fmt.Errorf("%w: place %q references unknown day %q", domain.ErrDiffKeyNotFound, pn.NodeKey, dayKey)
	}
	day.Places = append(day.Places, newPlace(day.ID, pn))
	sortDayPlaces(it, day.ID)
	return nil
}

func sortDayPlaces(it *model.Itinerary, dayID string) {
	for i := range it.Days {
		if it.Days[i].ID == dayID {
			ps := it.Days[i].Places
			sort.SliceStable(ps, func(a, b int) bool { return ps[a].VisitSequence < ps[b].VisitSequence })
			return
		}
	}
}

func removeNode(it *model.Itinerary, key string) bool {
	for i := range it.Days {
		if it.Days[i].ID == key {
			it.Days = append(it.Days[:i], it.Days[i+1:]...)
			return true
		}
		for j := range it.Days[i].Places {
			if it.Days[i].Places[j].ID == key {
				it.Days[i].Places = append(it.Days[i].Places[:j], it.Days[i].Places[j+1:]...)
				return true
			}
		}
	}
	return false
}

func cloneItinerary(src *model.Itinerary) *model.Itinerary {
	dst := *src
	dst.Tags = append([]string(nil), src.Tags...)
	dst.Days = make([]model.ItineraryDay, len(src.Days))
	for i, d := range src.Days {
		cd := d
		cd.Places = append([]model.ItineraryPlace(nil), d.Places...)
		dst.Days[i] = cd
	}
	return &dst
}
