package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/rest"

	"github.com/umputun/trendposter/pkg/domain"
	"github.com/umputun/trendposter/pkg/scheduler"
	"github.com/umputun/trendposter/pkg/trend"
)

const (
	defaultHistoryLimit = 10
	defaultTrendsLimit  = 15
	statusHistoryLimit  = 3
)

// draftResponse is a queued draft as returned by the api
type draftResponse struct {
	ID        int64      `json:"id"`
	Text      string     `json:"text"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	PostedAt  *time.Time `json:"posted_at,omitempty"`
	MediaPath string     `json:"media_path,omitempty"`
	MediaKind string     `json:"media_kind,omitempty"`
}

// historyResponse is a post log entry as returned by the api
type historyResponse struct {
	DraftID   int64     `json:"draft_id"`
	Text      string    `json:"text"`
	Trends    []string  `json:"trends"`
	Reasoning string    `json:"reasoning"`
	Score     int       `json:"relevance_score"`
	URL       string    `json:"url,omitempty"`
	PostedAt  time.Time `json:"posted_at"`
}

// addDraftRequest is the body of POST /queue
type addDraftRequest struct {
	Text      string `json:"text"`
	MediaPath string `json:"media_path"`
	MediaKind string `json:"media_kind"`
}

// statusHandler returns queue size, model and schedule settings and recent posts
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	size, err := s.queue.QueueSize(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to get queue size: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	history, err := s.queue.PostHistory(r.Context(), statusHistoryLimit)
	if err != nil {
		log.Printf("[ERROR] failed to get post history: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}

	renderJSON(w, r, http.StatusOK, rest.JSON{
		"status":       "ok",
		"version":      s.Version,
		"time":         time.Now().UTC(),
		"queue_size":   size,
		"settings":     s.Info,
		"recent_posts": toHistoryResponse(history),
	})
}

func (s *Server) listQueueHandler(w http.ResponseWriter, r *http.Request) {
	drafts, err := s.queue.ListQueued(r.Context())
	if err != nil {
		log.Printf("[ERROR] failed to list queue: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	res := make([]draftResponse, 0, len(drafts))
	for _, d := range drafts {
		res = append(res, toDraftResponse(d))
	}
	renderJSON(w, r, http.StatusOK, res)
}

func (s *Server) addDraftHandler(w http.ResponseWriter, r *http.Request) {
	var req addDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	var media *domain.Media
	if req.MediaPath != "" {
		kind := domain.MediaKind(strings.ToLower(req.MediaKind))
		if kind == "" {
			kind = domain.MediaPhoto
		}
		media = &domain.Media{Path: req.MediaPath, Kind: kind}
	}

	draft, err := s.queue.Add(r.Context(), req.Text, media)
	if err != nil {
		if domain.IsValidationError(err) {
			renderError(w, r, err, http.StatusBadRequest)
			return
		}
		log.Printf("[ERROR] failed to add draft: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	log.Printf("[INFO] draft #%d added", draft.ID)
	renderJSON(w, r, http.StatusCreated, toDraftResponse(*draft))
}

// getDraftHandler returns a draft in any status, posted and removed ones included
func (s *Server) getDraftHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid draft ID"), http.StatusBadRequest)
		return
	}

	draft, err := s.queue.GetDraft(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		renderError(w, r, err, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[ERROR] failed to get draft %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, toDraftResponse(*draft))
}

func (s *Server) removeDraftHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid draft ID"), http.StatusBadRequest)
		return
	}

	removed, err := s.queue.Remove(r.Context(), id)
	if err != nil {
		log.Printf("[ERROR] failed to remove draft %d: %v", id, err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	if !removed {
		renderError(w, r, fmt.Errorf("draft %d not found in queue", id), http.StatusNotFound)
		return
	}
	renderJSON(w, r, http.StatusOK, rest.JSON{"removed": id})
}

// postDraftHandler posts a queued draft right away, without analysis
func (s *Server) postDraftHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		renderError(w, r, fmt.Errorf("invalid draft ID"), http.StatusBadRequest)
		return
	}

	res, err := s.scheduler.PostByID(r.Context(), id)
	switch {
	case err != nil && res != nil:
		// the post is live but not recorded, retrying would publish it twice
		log.Printf("[ERROR] draft %d posted as %s but not recorded: %v", id, res.URL, err)
		renderJSON(w, r, http.StatusInternalServerError, rest.JSON{"error": err.Error(), "url": res.URL, "posted": true})
		return
	case errors.Is(err, domain.ErrBusy):
		renderError(w, r, err, http.StatusConflict)
		return
	case err != nil:
		renderError(w, r, err, http.StatusBadGateway)
		return
	case res == nil:
		renderError(w, r, fmt.Errorf("draft %d not found in queue", id), http.StatusNotFound)
		return
	}
	renderJSON(w, r, http.StatusOK, res)
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	history, err := s.queue.PostHistory(r.Context(), limitParam(r, defaultHistoryLimit))
	if err != nil {
		log.Printf("[ERROR] failed to get post history: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, toHistoryResponse(history))
}

func (s *Server) trendsHandler(w http.ResponseWriter, r *http.Request) {
	trends := s.trends.GetTrends(r.Context())
	if limit := limitParam(r, defaultTrendsLimit); len(trends) > limit {
		trends = trends[:limit]
	}
	if trends == nil {
		trends = []domain.Trend{}
	}
	renderJSON(w, r, http.StatusOK, rest.JSON{"trends": trends, "text": trend.Text(trends)})
}

// analyzeHandler runs a dry-run cycle, outside posting hours too
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	s.runCycle(w, r, true)
}

func (s *Server) cycleHandler(w http.ResponseWriter, r *http.Request) {
	s.runCycle(w, r, false)
}

func (s *Server) runCycle(w http.ResponseWriter, r *http.Request, dryRun bool) {
	res, err := s.scheduler.RunCycle(r.Context(), dryRun)
	if err != nil {
		log.Printf("[ERROR] cycle %s failed: %v", res.ID, err)
		renderJSON(w, r, http.StatusInternalServerError, rest.JSON{"error": err.Error(), "cycle": res})
		return
	}
	if res.Outcome == scheduler.OutcomeBusy {
		renderJSON(w, r, http.StatusConflict, res)
		return
	}
	renderJSON(w, r, http.StatusOK, res)
}

// topHandler ranks all queued drafts against current trends
func (s *Server) topHandler(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit")) // invalid or missing limit means the default
	rankings, err := s.scheduler.RankCycle(r.Context(), limit)
	if err != nil {
		log.Printf("[ERROR] ranking failed: %v", err)
		renderError(w, r, err, http.StatusInternalServerError)
		return
	}
	renderJSON(w, r, http.StatusOK, rankings)
}

// limitParam returns positive limit query parameter or the default
func limitParam(r *http.Request, def int) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}

func toDraftResponse(d domain.Draft) draftResponse {
	res := draftResponse{ID: d.ID, Text: d.Text, Status: string(d.Status), CreatedAt: d.CreatedAt, PostedAt: d.PostedAt}
	if d.Media != nil {
		res.MediaPath, res.MediaKind = d.Media.Path, string(d.Media.Kind)
	}
	return res
}

func toHistoryResponse(entries []domain.PostLogEntry) []historyResponse {
	res := make([]historyResponse, 0, len(entries))
	for _, e := range entries {
		trends := e.Trends
		if trends == nil {
			trends = []string{}
		}
		res = append(res, historyResponse{DraftID: e.DraftID, Text: e.Text, Trends: trends, Reasoning: e.Reasoning,
			Score: e.RelevanceScore, URL: e.PostURL, PostedAt: e.PostedAt})
	}
	return res
}
