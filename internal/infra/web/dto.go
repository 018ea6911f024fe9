package web

import (
	"time"

	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
)

// Wire DTOs for the public API. All dates on the wire are "2006-01-02".

type surveyCreateRequest struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	PeopleCount int      `json:"people_count"`
	BudgetLevel string   `json:"budget_level,omitempty"`
	Themes      []string `json:"themes,omitempty"`
	FreeText    string   `json:"free_text,omitempty"`
}

type surveyResponse struct {
	ID          string   `json:"id"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	PeopleCount int      `json:"people_count"`
	BudgetLevel string   `json:"budget_level,omitempty"`
	Themes      []string `json:"themes,omitempty"`
	FreeText    string   `json:"free_text,omitempty"`
	CreatedAt   string   `json:"created_at"`
}

func toSurveyResponse(s *model.TravelSurvey) surveyResponse {
	return surveyResponse{
		ID:          s.ID,
		Destination: s.Destination,
		StartDate:   s.StartDate.Format(adapter.DateLayout),
		EndDate:     s.EndDate.Format(adapter.DateLayout),
		PeopleCount: s.PeopleCount,
		BudgetLevel: s.BudgetLevel,
		Themes:      s.Themes,
		FreeText:    s.FreeText,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

type generateRequest struct {
	SurveyID string `json:"survey_id"`
}

type modifyRequest struct {
	UserQuery string `json:"user_query"`
}

type jobResponse struct {
	ID                string   `json:"id"`
	Type              string   `json:"type"`
	Status            string   `json:"status"`
	SourceSurveyID    string   `json:"source_survey_id,omitempty"`
	TargetItineraryID string   `json:"target_itinerary_id,omitempty"`
	ResultItineraryID string   `json:"result_itinerary_id,omitempty"`
	IntentStatus      string   `json:"intent_status,omitempty"`
	DiffKeys          []string `json:"diff_keys,omitempty"`
	Message           string   `json:"message,omitempty"`
	ErrorCode         string   `json:"error_code,omitempty"`
	ErrorMessage      string   `json:"error_message,omitempty"`
	AttemptCount      int      `json:"attempt_count"`
	RetryCount        int      `json:"retry_count"`
	CreatedAt         string   `json:"created_at"`
	CompletedAt       string   `json:"completed_at,omitempty"`
}

func toJobResponse(j *model.PlanJob) jobResponse {
	resp := jobResponse{
		ID:                j.ID,
		Type:              string(j.Type),
		Status:            string(j.Status),
		SourceSurveyID:    j.SourceSurveyID,
		TargetItineraryID: j.TargetItineraryID,
		ResultItineraryID: j.ResultItineraryID,
		IntentStatus:      string(j.IntentStatus),
		DiffKeys:          j.DiffKeys,
		Message:           j.Message,
		ErrorCode:         j.ErrorCode,
		ErrorMessage:      j.ErrorMessage,
		AttemptCount:      j.AttemptCount,
		RetryCount:        j.RetryCount,
		CreatedAt:         j.CreatedAt.Format(time.RFC3339),
	}
	if j.CompletedAt != nil {
		resp.CompletedAt = j.CompletedAt.Format(time.RFC3339)
	}
	return resp
}

type placeResponse struct {
	ID            string  `json:"id"`
	PlaceName     string  `json:"place_name"`
	PlaceID       string  `json:"place_id,omitempty"`
	Address       string  `json:"address,omitempty"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PlaceURL      string  `json:"place_url,omitempty"`
	Description   string  `json:"description,omitempty"`
	VisitSequence int     `json:"visit_sequence"`
	VisitTime     string  `json:"visit_time,omitempty"`
}

type dayResponse struct {
	ID        string          `json:"id"`
	DayNumber int             `json:"day_number"`
	Date      string          `json:"date"`
	Places    []placeResponse `json:"places"`
}

type itineraryResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary,omitempty"`
	StartDate   string        `json:"start_date"`
	EndDate     string        `json:"end_date"`
	TripDays    int           `json:"trip_days"`
	Nights      int           `json:"nights"`
	PeopleCount int           `json:"people_count"`
	Tags        []string      `json:"tags,omitempty"`
	Days        []dayResponse `json:"days"`
	UpdatedAt   string        `json:"updated_at"`
}

func toItineraryResponse(it *model.Itinerary) itineraryResponse {
	resp := itineraryResponse{
		ID:          it.ID,
		Title:       it.Title,
		Summary:     it.Summary,
		StartDate:   it.StartDate.Format(adapter.DateLayout),
		EndDate:     it.EndDate.Format(adapter.DateLayout),
		TripDays:    it.TripDays,
		Nights:      it.Nights,
		PeopleCount: it.PeopleCount,
		Tags:        it.Tags,
		Days:        []dayResponse{},
		UpdatedAt:   it.UpdatedAt.Format(time.RFC3339),
	}
	for _, d := range it.Days {
		dr := dayResponse{
			ID:        d.ID,
			DayNumber: d.DayNumber,
			Date:      d.Date.Format(adapter.DateLayout),
			Places:    []placeResponse{},
		}
		for _, p := range d.Places {
			dr.Places = append(dr.Places, placeResponse{
				ID:            p.ID,
				PlaceName:     p.Name,
				PlaceID:       p.ExternalID,
				Address:       p.Address,
				Latitude:      p.Latitude,
				Longitude:     p.Longitude,
				PlaceURL:      p.URL,
				Description:   p.Description,
				VisitSequence: p.VisitSequence,
				VisitTime:     p.VisitTime,
			})
		}
		resp.Days = append(resp.Days, dr)
	}
	return resp
}

type adminLoginRequest struct {
	APIKey string `json:"api_key"`
}
