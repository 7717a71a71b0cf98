package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/samplecodes/testkata/internal/metrics"
	"github.com/samplecodes/testkata/internal/users"
	"github.com/samplecodes/testkata/pkg/logger"
)

// AsyncUserFetcher starts a user lookup and delivers its single result on the channel.
type AsyncUserFetcher interface {
	FetchAsync(userID string) <-chan users.Result
}

// DisplayFormatter renders a user's display string.
type DisplayFormatter interface {
	FormatUserDisplay(ctx context.Context, id string) (string, error)
}

// DisplayResponse is the body of GET /api/v1/users/{id}/display.
type DisplayResponse struct {
	ID      string `json:"id"`
	Display string `json:"display"`
}

// UserHandler exposes user lookups.
type UserHandler struct {
	fetcher   AsyncUserFetcher
	formatter DisplayFormatter
	log       *zap.Logger
}

// NewUserHandler creates a new UserHandler. formatter may be nil.
func NewUserHandler(fetcher AsyncUserFetcher, formatter DisplayFormatter, log *zap.Logger) *UserHandler {
	return &UserHandler{
		fetcher:   fetcher,
		formatter: formatter,
		log:       logger.OrNop(log),
	}
}

// GetUser handles GET /api/v1/users/{id}. The fetch is raced against the
// request context; a fetch that loses the race finishes in the background.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	start := time.Now()

	select {
	case res := <-h.fetcher.FetchAsync(id):
		if res.Err != nil {
			metrics.RecordUserFetch("error", time.Since(start))
			writeError(w, res.Err)
			return
		}
		metrics.RecordUserFetch("ok", time.Since(start))
		writeJSON(w, http.StatusOK, res.User)

	case <-r.Context().Done():
		metrics.RecordUserFetch("abandoned", time.Since(start))
		h.log.Warn("user fetch abandoned", zap.String("user_id", id), zap.Error(r.Context().Err()))
		metrics.RecordError("Timeout")
		writeJSON(w, http.StatusGatewayTimeout, ErrorResponse{
			Error: "user fetch did not complete in time",
			Code:  "TIMEOUT",
		})
	}
}

// GetDisplay handles GET /api/v1/users/{id}/display.
func (h *UserHandler) GetDisplay(w http.ResponseWriter, r *http.Request) {
	if h.formatter == nil {
		writeUnavailable(w, "display service")
		return
	}

	id := r.PathValue("id")
	display, err := h.formatter.FormatUserDisplay(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DisplayResponse{ID: id, Display: display})
}
