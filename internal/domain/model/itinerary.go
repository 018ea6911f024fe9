package model

import "time"

// Itinerary is the materialized result of a successful plan job. It is stored
// arena style: days and places are independently keyed rows referencing their
// parent by id, never by embedded back-pointers.
type Itinerary struct {
	ID          string
	OwnerID     string
	Title       string
	Summary     string
	StartDate   time.Time
	EndDate     time.Time
	TripDays    int
	Nights      int
	PeopleCount int
	Tags        []string
	Days        []ItineraryDay
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ItineraryDay struct {
	ID          string
	ItineraryID string
	DayNumber   int
	Date        time.Time
	Places      []ItineraryPlace
}

type ItineraryPlace struct {
	ID            string
	DayID         string
	Name          string
	ExternalID    string // POI id from the map provider, not ours
	Address       string
	Latitude      float64
	Longitude     float64
	URL           string
	Description   string
	VisitSequence int
	VisitTime     string
}

// FindDay returns the day with the given node key, or nil.
func (it *Itinerary) FindDay(id string) *ItineraryDay {
	for i := range it.Days {
		if it.Days[i].ID == id {
			return &it.Days[i]
		}
	}
	return nil
}

// FindPlace returns the place with the given node key and its owning day, or nils.
func (it *Itinerary) FindPlace(id string) (*ItineraryDay, *ItineraryPlace) {
	for i := range it.Days {
		for j := range it.Days[i].Places {
			if it.Days[i].Places[j].ID == id {
				return &it.Days[i], &it.Days[i].Places[j]
			}
		}
	}
	return nil, nil
}

// PlaceCount is the total number of places across all days.
func (it *Itinerary) PlaceCount() int {
	n := 0
	for i := range it.Days {
		n += len(it.Days[i].Places)
	}
	return n
}
