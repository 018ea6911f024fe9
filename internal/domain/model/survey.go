package model

import "time"

// TravelSurvey is the questionnaire a generation job is built from.
type TravelSurvey struct {
	ID          string
	OwnerID     string
	Destination string
	StartDate   time.Time
	EndDate     time.Time
	PeopleCount int
	BudgetLevel string // low | medium | high
	Themes      []string
	FreeText    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTravelSurvey(id, ownerID, destination string, start, end time.Time, people int) *TravelSurvey {
	now := time.Now()
	return &TravelSurvey{
		ID:          id,
		OwnerID:     ownerID,
		Destination: destination,
		StartDate:   start,
		EndDate:     end,
		PeopleCount: people,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
