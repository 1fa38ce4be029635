package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/trendposter/pkg/domain"
	"github.com/umputun/trendposter/pkg/scheduler"
)

//go:generate moq -out mocks/queue.go -pkg mocks -skip-ensure -fmt goimports . Queue
//go:generate moq -out mocks/scheduler.go -pkg mocks -skip-ensure -fmt goimports . Scheduler
//go:generate moq -out mocks/trend_source.go -pkg mocks -skip-ensure -fmt goimports . TrendSource

// Server is the HTTP control API for the draft queue and cycles
type Server struct {
	Params
	queue     Queue
	scheduler Scheduler
	trends    TrendSource

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
	cooldown   *cooldown
}

// Queue interface for draft operations
type Queue interface {
	Add(ctx context.Context, text string, media *domain.Media) (*domain.Draft, error)
	ListQueued(ctx context.Context) ([]domain.Draft, error)
	GetDraft(ctx context.Context, id int64) (*domain.Draft, error)
	Remove(ctx context.Context, id int64) (bool, error)
	PostHistory(ctx context.Context, limit int) ([]domain.PostLogEntry, error)
	QueueSize(ctx context.Context) (int, error)
}

// Scheduler interface for on-demand cycles
type Scheduler interface {
	RunCycle(ctx context.Context, dryRun bool) (scheduler.CycleResult, error)
	RankCycle(ctx context.Context, limit int) ([]domain.Analysis, error)
	PostByID(ctx context.Context, id int64) (*domain.PostResult, error)
}

// TrendSource interface for current trends
type TrendSource interface {
	GetTrends(ctx context.Context) []domain.Trend
}

// Params defines server settings
type Params struct {
	Listen         string
	Timeout        time.Duration
	AuthUser       string // basic auth is enabled when both user and password are set
	AuthPassword   string
	ManualCooldown time.Duration // min time between expensive manual operations
	Version        string
	Debug          bool
	Info           StatusInfo
}

// StatusInfo is static settings reported by the status endpoint
type StatusInfo struct {
	Provider          string `json:"llm_provider"`
	Model             string `json:"llm_model"`
	CheckInterval     string `json:"check_interval"`
	PostingHoursStart int    `json:"posting_hours_start"`
	PostingHoursEnd   int    `json:"posting_hours_end"`
	MinRelevanceScore int    `json:"min_relevance_score"`
	Timezone          string `json:"timezone"`
	AutoPost          bool   `json:"auto_post"`
}

// New initializes a new server instance
func New(queue Queue, sched Scheduler, trends TrendSource, params Params) *Server {
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	s := &Server{
		Params:    params,
		queue:     queue,
		scheduler: sched,
		trends:    trends,
		router:    routegroup.New(http.NewServeMux()),
		cooldown:  &cooldown{period: params.ManualCooldown, now: time.Now},
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	log.Printf("[INFO] starting server on %s", s.Listen)

	// cycles may run for minutes, write timeout can't be shorter than that
	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:              s.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: s.Timeout,
		ReadTimeout:       s.Timeout,
		WriteTimeout:      max(s.Timeout, 5*time.Minute),
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("trendposter", "umputun", s.Version))
	s.router.Use(rest.Ping)

	if s.Debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(64 * 1024))
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		if s.AuthUser != "" && s.AuthPassword != "" {
			r.Use(rest.BasicAuthWithUserPasswd(s.AuthUser, s.AuthPassword))
		}

		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("GET /queue", s.listQueueHandler)
		r.HandleFunc("POST /queue", s.addDraftHandler)
		r.HandleFunc("GET /queue/{id}", s.getDraftHandler)
		r.HandleFunc("DELETE /queue/{id}", s.removeDraftHandler)
		r.HandleFunc("GET /history", s.historyHandler)
		r.HandleFunc("GET /trends", s.trendsHandler)

		// expensive operations call the model or post, they share a cooldown
		r.With(s.cooldown.middleware).Route(func(exp *routegroup.Bundle) {
			exp.HandleFunc("POST /queue/{id}/post", s.postDraftHandler)
			exp.HandleFunc("POST /analyze", s.analyzeHandler)
			exp.HandleFunc("POST /cycle", s.cycleHandler)
			exp.HandleFunc("GET /top", s.topHandler)
		})
	})
}

// cooldown rejects requests coming sooner than period after the last accepted one
type cooldown struct {
	period time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func (c *cooldown) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if wait := c.acquire(); wait > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			renderError(w, r, fmt.Errorf("too many requests, retry in %v", wait.Round(time.Second)), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// acquire returns zero and records the call when allowed, otherwise the remaining wait
func (c *cooldown) acquire() time.Duration {
	if c.period <= 0 {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if !c.last.IsZero() {
		if elapsed := now.Sub(c.last); elapsed < c.period {
			return c.period - elapsed
		}
	}
	c.last = now
	return 0
}

// renderJSON sends JSON response
func renderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// renderError sends error response as JSON
func renderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	renderJSON(w, r, code, rest.JSON{"error": errMsg})
}
