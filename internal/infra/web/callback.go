package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"travel-ai-planner/internal/domain"
	"travel-ai-planner/internal/domain/ports/adapter"
	"travel-ai-planner/internal/infra/logging"
	red "travel-ai-planner/internal/infra/redis"
	"travel-ai-planner/internal/usecase"
)

const callbackLockTTL = 30 * time.Second

// callbackHandler ingests asynchronous planner results. The shared secret
// keeps random POSTs out; the per-job lock keeps concurrent duplicate
// deliveries from racing each other into the database. Deliveries that find
// the job already settled get 200 so the planner stops retrying.
func callbackHandler(
	cbUC usecase.CallbackUseCase,
	locker red.Locker,
	secret string,
	logger *zerolog.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if secret == "" || subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Callback-Secret")), []byte(secret)) != 1 {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		jobID := chi.URLParam(r, "jobID")
		ctx := logging.WithJobID(r.Context(), jobID)
		l := logging.With(ctx, logger)

		var payload adapter.CallbackPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, "Invalid callback body", http.StatusBadRequest)
			return
		}

		token, err := locker.TryLock(ctx, red.CallbackLockKey(jobID), callbackLockTTL)
		if err != nil {
			if errors.Is(err, domain.ErrCallbackInFlight) {
				// Another delivery is mid-ingest. Ask the planner to come back;
				// the retry will find the job terminal and get its 200 then.
				http.Error(w, "Callback already in flight", http.StatusConflict)
				return
			}
			// Redis down: proceed without the lock, the CAS still protects us.
			l.Warn().Err(err).Msg("callback lock unavailable")
		} else {
			defer func() {
				if uerr := locker.Unlock(ctx, red.CallbackLockKey(jobID), token); uerr != nil {
					l.Warn().Err(uerr).Msg("callback unlock failed")
				}
			}()
		}

		err = cbUC.Ingest(ctx, jobID, payload)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, struct {
				Accepted bool `json:"accepted"`
			}{Accepted: true})
		case errors.Is(err, domain.ErrJobAlreadyTerminal):
			// Duplicate or late delivery; nothing changed.
			writeJSON(w, http.StatusOK, struct {
				Accepted  bool `json:"accepted"`
				Duplicate bool `json:"duplicate"`
			}{Accepted: true, Duplicate: true})
		case errors.Is(err, domain.ErrJobNotFound):
			http.Error(w, "Unknown job", http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidCallbackPayload), errors.Is(err, domain.ErrDiffKeyNotFound):
			// The job has been settled as failed; acknowledge so the planner
			// does not redeliver a payload we will never accept.
			writeJSON(w, http.StatusOK, struct {
				Accepted bool   `json:"accepted"`
				Rejected bool   `json:"rejected"`
				Reason   string `json:"reason"`
			}{Accepted: true, Rejected: true, Reason: err.Error()})
		default:
			l.Error().Err(err).Msg("callback ingest failed")
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
	}
}
