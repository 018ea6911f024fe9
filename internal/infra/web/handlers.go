package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/model"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/usecase"
)

// DispatchScheduler hands a freshly created or re-opened job to the dispatch
// machinery. The HTTP layer never calls the planner itself.
type DispatchScheduler interface {
	Schedule(jobID string)
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrJobNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrRetryLimitExceeded):
		http.Error(w, "Retry limit exceeded", http.StatusConflict)
	case errors.Is(err, domain.ErrJobConflict):
		http.Error(w, "Job is not in a retryable state", http.StatusConflict)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func surveyCreateHandler(surveyUC usecase.SurveyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req surveyCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		start, err := time.Parse(adapter.DateLayout, req.StartDate)
		if err != nil {
			http.Error(w, "start_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		end, err := time.Parse(adapter.DateLayout, req.EndDate)
		if err != nil {
			http.Error(w, "end_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		survey := &model.TravelSurvey{
			Destination: req.Destination,
			StartDate:   start,
			EndDate:     end,
			PeopleCount: req.PeopleCount,
			BudgetLevel: req.BudgetLevel,
			Themes:      req.Themes,
			FreeText:    req.FreeText,
		}
		created, err := surveyUC.Create(r.Context(), ownerID(r), survey)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toSurveyResponse(created))
	}
}

func surveyGetHandler(surveyUC usecase.SurveyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := surveyUC.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toSurveyResponse(s))
	}
}

func surveyListHandler(surveyUC usecase.SurveyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		surveys, err := surveyUC.List(r.Context(), ownerID(r), offset, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		data := make([]surveyResponse, 0, len(surveys))
		for _, s := range surveys {
			data = append(data, toSurveyResponse(s))
		}
		writeJSON(w, http.StatusOK, struct {
			Data []surveyResponse `json:"data"`
		}{Data: data})
	}
}

func surveyDeleteHandler(surveyUC usecase.SurveyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := surveyUC.Delete(r.Context(), ownerID(r), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// planGenerateHandler creates the pending job and hands it to the dispatcher.
// 202: the result arrives asynchronously, poll the job.
func planGenerateHandler(jobUC usecase.PlanJobUseCase, sched DispatchScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SurveyID == "" {
			http.Error(w, "survey_id is required", http.StatusBadRequest)
			return
		}
		job, err := jobUC.RequestGeneration(r.Context(), ownerID(r), req.SurveyID)
		if err != nil {
			writeError(w, err)
			return
		}
		sched.Schedule(job.ID)
		writeJSON(w, http.StatusAccepted, toJobResponse(job))
	}
}

func itineraryModifyHandler(jobUC usecase.PlanJobUseCase, sched DispatchScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req modifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		job, err := jobUC.RequestModification(r.Context(), ownerID(r), chi.URLParam(r, "id"), req.UserQuery)
		if err != nil {
			writeError(w, err)
			return
		}
		sched.Schedule(job.ID)
		writeJSON(w, http.StatusAccepted, toJobResponse(job))
	}
}

func jobGetHandler(jobUC usecase.PlanJobUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := jobUC.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toJobResponse(job))
	}
}

func jobRetryHandler(jobUC usecase.PlanJobUseCase, sched DispatchScheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := jobUC.Retry(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		sched.Schedule(job.ID)
		writeJSON(w, http.StatusAccepted, toJobResponse(job))
	}
}

func itineraryGetHandler(itinUC usecase.ItineraryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		it, err := itinUC.Get(r.Context(), ownerID(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toItineraryResponse(it))
	}
}

func itineraryListHandler(itinUC usecase.ItineraryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		items, err := itinUC.List(r.Context(), ownerID(r), offset, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		data := make([]itineraryResponse, 0, len(items))
		for _, it := range items {
			data = append(data, toItineraryResponse(it))
		}
		writeJSON(w, http.StatusOK, struct {
			Data []itineraryResponse `json:"data"`
		}{Data: data})
	}
}

func adminLoginHandler(auth *AuthManager, apiKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req adminLoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if apiKey == "" || subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(apiKey)) != 1 {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		token, err := auth.Mint(w)
		if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Token string `json:"token"`
		}{Token: token})
	}
}

func adminStatsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := statsUC.Totals(r.Context())
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
