package model

import "time"

type PlanJobStatus string

const (
	PlanJobStatusPending    PlanJobStatus = "pending"
	PlanJobStatusProcessing PlanJobStatus = "processing"
	PlanJobStatusSuccess    PlanJobStatus = "success"
	PlanJobStatusFailed     PlanJobStatus = "failed"
)

type PlanJobType string

const (
	PlanJobTypeGeneration   PlanJobType = "generation"
	PlanJobTypeModification PlanJobType = "modification"
)

// IntentStatus is the planner's classification of a modification request.
// Only IntentSuccess implies an itinerary diff was produced.
type IntentStatus string

const (
	IntentSuccess          IntentStatus = "SUCCESS"
	IntentAskClarification IntentStatus = "ASK_CLARIFICATION"
	IntentGeneralChat      IntentStatus = "GENERAL_CHAT"
	IntentRejected         IntentStatus = "REJECTED"
)

// Error codes recorded on failed jobs.
const (
	ErrCodeDispatchFailed         = "DISPATCH_FAILED"
	ErrCodeInvalidCallbackPayload = "INVALID_CALLBACK_PAYLOAD"
	ErrCodeMaterializationFailed  = "MATERIALIZATION_FAILED"
	ErrCodeDiffKeyNotFound        = "DIFF_KEY_NOT_FOUND"
)

// PlanJob tracks one generation or modification request handed to the
// external planner service. Status only ever walks forward
// (pending -> processing -> success|failed); the single exception is the
// retry edge failed -> pending, taken via the retry policy.
type PlanJob struct {
	ID      string
	Type    PlanJobType
	Status  PlanJobStatus
	OwnerID string

	// Exactly one of these is set, depending on Type.
	SourceSurveyID    string
	TargetItineraryID string

	AttemptCount int
	RetryCount   int

	ErrorCode    string
	ErrorMessage string

	// Modification results
	IntentStatus IntentStatus
	DiffKeys     []string
	UserQuery    string
	Message      string

	ResultItineraryID string

	StartedAt   *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewGenerationJob(id, ownerID, surveyID string) *PlanJob {
	now := time.Now()
	return &PlanJob{
		ID:             id,
		Type:           PlanJobTypeGeneration,
		Status:         PlanJobStatusPending,
		OwnerID:        ownerID,
		SourceSurveyID: surveyID,
		AttemptCount:   1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func NewModificationJob(id, ownerID, itineraryID, userQuery string) *PlanJob {
	now := time.Now()
	return &PlanJob{
		ID:                id,
		Type:              PlanJobTypeModification,
		Status:            PlanJobStatusPending,
		OwnerID:           ownerID,
		TargetItineraryID: itineraryID,
		UserQuery:         userQuery,
		AttemptCount:      1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Terminal reports whether the job has reached a final status.
func (j *PlanJob) Terminal() bool {
	return j.Status == PlanJobStatusSuccess || j.Status == PlanJobStatusFailed
}

// Stale reports whether the job has sat in processing longer than threshold
// without a callback. Remediation is left to an external scheduler; this only
// exposes the condition.
func (j *PlanJob) Stale(now time.Time, threshold time.Duration) bool {
	if j.Status != PlanJobStatusProcessing || j.StartedAt == nil {
		return false
	}
	return now.Sub(*j.StartedAt) > threshold
}

// CanTransition encodes the allowed status walk. The failed -> pending edge is
// the retry path; every other backward or lateral move is rejected.
func CanTransition(from, to PlanJobStatus) bool {
	switch from {
	case PlanJobStatusPending:
		return to == PlanJobStatusProcessing || to == PlanJobStatusFailed
	case PlanJobStatusProcessing:
		return to == PlanJobStatusSuccess || to == PlanJobStatusFailed
	case PlanJobStatusFailed:
		return to == PlanJobStatusPending
	default:
		return false
	}
}
