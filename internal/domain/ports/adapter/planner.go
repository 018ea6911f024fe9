package adapter

import "context"

// Wire contract with the external AI planner service, both directions.
// Outbound requests carry a callback URL; the service answers with a
// transport-level acknowledgment only and delivers the result later through
// the callback endpoint, at least once.

const (
	CallbackStatusSuccess = "SUCCESS"
	CallbackStatusFailed  = "FAILED"
)

const DateLayout = "2006-01-02"

// PlaceNode is one place inside a day, as exchanged with the planner.
// NodeKey is our internal place id; the planner must echo it back unchanged
// for existing nodes and leave it empty for nodes it invented.
type PlaceNode struct {
	NodeKey       string  `json:"node_key,omitempty"`
	PlaceName     string  `json:"place_name"`
	PlaceID       string  `json:"place_id"`
	Address       string  `json:"address"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	PlaceURL      string  `json:"place_url"`
	Description   string  `json:"description"`
	VisitSequence int     `json:"visit_sequence"`
	VisitTime     string  `json:"visit_time"`
}

type DayNode struct {
	NodeKey   string      `json:"node_key,omitempty"`
	DayNumber int         `json:"day_number"`
	DailyDate string      `json:"daily_date"`
	Places    []PlaceNode `json:"places"`
}

type SurveySnapshot struct {
	Destination string   `json:"destination"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	PeopleCount int      `json:"people_count"`
	BudgetLevel string   `json:"budget_level,omitempty"`
	Themes      []string `json:"themes,omitempty"`
	FreeText    string   `json:"free_text,omitempty"`
}

type ItinerarySnapshot struct {
	Title     string    `json:"title"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Days      []DayNode `json:"itinerary"`
}

type GenerationRequest struct {
	JobID       string         `json:"job_id"`
	CallbackURL string         `json:"callback_url"`
	Survey      SurveySnapshot `json:"survey"`
}

type ModificationRequest struct {
	JobID       string            `json:"job_id"`
	CallbackURL string            `json:"callback_url"`
	UserQuery   string            `json:"user_query"`
	Itinerary   ItinerarySnapshot `json:"itinerary"`
}

// GeneratedPlan is the `data` object of a successful generation callback.
type GeneratedPlan struct {
	StartDate            string    `json:"start_date"`
	EndDate              string    `json:"end_date"`
	TripDays             int       `json:"trip_days"`
	Nights               int       `json:"nights"`
	PeopleCount          int       `json:"people_count"`
	Tags                 []string  `json:"tags"`
	Title                string    `json:"title"`
	Summary              string    `json:"summary"`
	Itinerary            []DayNode `json:"itinerary"`
	LLMCommentary        string    `json:"llm_commentary,omitempty"`
	NextActionSuggestion []string  `json:"next_action_suggestion,omitempty"`
}

type CallbackError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CallbackPayload is the body of the planner's asynchronous result callback.
// Which fields are expected depends on the job type; see the ingest use case.
type CallbackPayload struct {
	Status string         `json:"status"`
	Error  *CallbackError `json:"error,omitempty"`

	// Generation
	Data *GeneratedPlan `json:"data,omitempty"`

	// Modification
	IntentStatus      string    `json:"intent_status,omitempty"`
	ModifiedItinerary []DayNode `json:"modified_itinerary,omitempty"`
	DiffKeys          []string  `json:"diff_keys,omitempty"`
	UserQuery         string    `json:"user_query,omitempty"`
	Message           string    `json:"message,omitempty"`
}

// PlannerAdapter dispatches plan requests to the external service. Both calls
// return once the service has acknowledged receipt; a non-nil error means the
// request never made it (transport failure or non-2xx acknowledgment).
type PlannerAdapter interface {
	RequestGeneration(ctx context.Context, req GenerationRequest) error
	RequestModification(ctx context.Context, req ModificationRequest) error
}
