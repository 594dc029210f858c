package http

import (
	"context"
	"crypto/hmac"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yamori/gleaner/pkg/domain/interfaces"
	"github.com/yamori/gleaner/pkg/domain/model"
	"github.com/yamori/gleaner/pkg/utils/async"
)

// CollectHandler exposes the feed collection API
type CollectHandler struct {
	token     string
	collectUC interfaces.CollectUseCase
}

// NewCollectHandler creates a new CollectHandler
func NewCollectHandler(token string, collectUC interfaces.CollectUseCase) *CollectHandler {
	return &CollectHandler{
		token:     token,
		collectUC: collectUC,
	}
}

// Trigger starts a collect run in the background and responds immediately
func (h *CollectHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	if !h.authorized(r) {
		logger.Warn("Rejected collect request with invalid token")
		writeError(w, goerr.New("invalid or missing API token"), http.StatusUnauthorized)
		return
	}

	requestID := middleware.GetReqID(ctx)
	logger.Info("Collect run requested", "request_id", requestID)

	async.Dispatch(ctx, func(ctx context.Context) error {
		report, err := h.collectUC.Collect(ctx)
		if err != nil {
			return err
		}
		ctxlog.From(ctx).Info("Background collect run finished",
			"run_id", report.RunID,
			"added", report.TotalAdded(),
			"failed_categories", report.FailedCategories(),
		)
		return nil
	})

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":     "accepted",
		"request_id": requestID,
	})
}

// Items returns the archived items for a week. Without query parameters it
// serves the current ISO week; ?year= and ?week= select another one.
func (h *CollectHandler) Items(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	week := model.CurrentWeek(time.Now())

	yearParam := r.URL.Query().Get("year")
	weekParam := r.URL.Query().Get("week")
	if yearParam != "" || weekParam != "" {
		year, err := strconv.Atoi(yearParam)
		if err != nil {
			writeError(w, goerr.New("invalid year parameter", goerr.V("year", yearParam)), http.StatusBadRequest)
			return
		}
		num, err := strconv.Atoi(weekParam)
		if err != nil || num < 1 || num > 53 {
			writeError(w, goerr.New("invalid week parameter", goerr.V("week", weekParam)), http.StatusBadRequest)
			return
		}
		week = model.Week{Year: year, Week: num}
	}

	items, err := h.collectUC.ListItems(ctx, week)
	if err != nil {
		logger.Error("Failed to list archived items", "week", week.String(), "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"week":  week,
		"items": items,
	})
}

// authorized checks the bearer token when one is configured
func (h *CollectHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return true
	}

	auth := r.Header.Get("Authorization")
	got, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}

	return hmac.Equal([]byte(got), []byte(h.token))
}
