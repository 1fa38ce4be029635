// Package scheduler runs the analyze-gate-post cycle. Each cycle pulls queued drafts, compares
// them with current trends using a language model and posts the best match when it passes
// the time window and score gates.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/umputun/trendposter/pkg/domain"
	"github.com/umputun/trendposter/pkg/llm"
	"github.com/umputun/trendposter/pkg/trend"
)

//go:generate moq -out mocks/queue.go -pkg mocks -skip-ensure -fmt goimports . Queue
//go:generate moq -out mocks/trend_source.go -pkg mocks -skip-ensure -fmt goimports . TrendSource
//go:generate moq -out mocks/completer.go -pkg mocks -skip-ensure -fmt goimports . Completer
//go:generate moq -out mocks/poster.go -pkg mocks -skip-ensure -fmt goimports . Poster
//go:generate moq -out mocks/notifier.go -pkg mocks -skip-ensure -fmt goimports . Notifier

const (
	defaultRankLimit = 5
	maxRankLimit     = 20
	manualTrend      = "manual"
	manualReasoning  = "Manually posted by user"
)

// Queue is the draft storage used by the scheduler
type Queue interface {
	ListQueued(ctx context.Context) ([]domain.Draft, error)
	MarkPosted(ctx context.Context, id int64, rec domain.PostRecord) error
	QueueSize(ctx context.Context) (int, error)
	ExpireOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// TrendSource provides current trending topics, empty result means nothing could be fetched
type TrendSource interface {
	GetTrends(ctx context.Context) []domain.Trend
}

// Completer sends a prompt to a language model
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Poster publishes a post with optional media
type Poster interface {
	Post(ctx context.Context, text string, media *domain.Media) (*domain.PostResult, error)
}

// Notifier delivers a human-readable message about cycle outcomes
type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Outcome tells how a cycle ended
type Outcome string

// cycle outcomes
const (
	OutcomeBusy           Outcome = "busy"
	OutcomeOutOfHours     Outcome = "out_of_hours"
	OutcomeEmptyQueue     Outcome = "empty_queue"
	OutcomeNoTrends       Outcome = "no_trends"
	OutcomeNoMatch        Outcome = "no_match"
	OutcomeBelowThreshold Outcome = "below_threshold"
	OutcomeDryRun         Outcome = "dry_run"
	OutcomePosted         Outcome = "posted"
	OutcomePostFailed     Outcome = "post_failed"

	// OutcomePostedUnrecorded means the post is live but the queue wasn't updated
	OutcomePostedUnrecorded Outcome = "posted_unrecorded"
)

// CycleResult is the outcome of a single cycle. Analysis is set when the model picked a draft.
type CycleResult struct {
	ID       string             `json:"id"`
	Outcome  Outcome            `json:"outcome"`
	Analysis *domain.Analysis   `json:"analysis,omitempty"`
	Post     *domain.PostResult `json:"post,omitempty"`
}

// Params defines scheduler dependencies and policy
type Params struct {
	Queue     Queue
	Trends    TrendSource
	Completer Completer
	Poster    Poster
	Notifier  Notifier // optional

	Location          *time.Location // timezone of posting hours, UTC if nil
	PostingHoursStart int            // first hour when posting is allowed
	PostingHoursEnd   int            // hour when posting stops, exclusive; less than start wraps midnight
	MinRelevanceScore int
	MaxAge            time.Duration // queued drafts older than this expire at cycle start, 0 disables

	Now func() time.Time // time source, time.Now if nil
}

// Scheduler runs cycles. RunCycle and PostByID are mutually exclusive, RankCycle is read-only and not gated.
type Scheduler struct {
	Params
	busy *semaphore.Weighted
}

// NewScheduler creates a scheduler with the given params
func NewScheduler(params Params) *Scheduler {
	if params.Location == nil {
		params.Location = time.UTC
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &Scheduler{Params: params, busy: semaphore.NewWeighted(1)}
}

// RunCycle runs one analyze-gate-post cycle. Dry run skips the time window gate and never posts
// or mutates the queue. The error is returned only for queue storage failures; everything else
// is reported with the outcome.
func (s *Scheduler) RunCycle(ctx context.Context, dryRun bool) (CycleResult, error) {
	res := CycleResult{ID: uuid.NewString()[:8]}
	if !s.busy.TryAcquire(1) {
		lgr.Printf("[INFO] cycle %s skipped, another one is in progress", res.ID)
		res.Outcome = OutcomeBusy
		return res, nil
	}
	defer s.busy.Release(1)

	if !dryRun && !s.inPostingHours() {
		lgr.Printf("[INFO] cycle %s: outside posting hours %02d-%02d, skipping", res.ID, s.PostingHoursStart, s.PostingHoursEnd)
		res.Outcome = OutcomeOutOfHours
		return res, nil
	}

	if s.MaxAge > 0 && !dryRun {
		expired, err := s.Queue.ExpireOlderThan(ctx, s.MaxAge)
		if err != nil {
			return res, fmt.Errorf("expire drafts: %w", err)
		}
		if expired > 0 {
			lgr.Printf("[INFO] cycle %s: expired %d drafts older than %v", res.ID, expired, s.MaxAge)
		}
	}

	drafts, err := s.Queue.ListQueued(ctx)
	if err != nil {
		return res, fmt.Errorf("list queued drafts: %w", err)
	}
	if len(drafts) == 0 {
		lgr.Printf("[INFO] cycle %s: queue is empty, nothing to analyze", res.ID)
		res.Outcome = OutcomeEmptyQueue
		return res, nil
	}

	trends := s.Trends.GetTrends(ctx)
	if len(trends) == 0 {
		lgr.Printf("[WARN] cycle %s: no trends found, skipping", res.ID)
		s.notify(ctx, "⚠️ Couldn't fetch trending topics. Will retry next cycle.")
		res.Outcome = OutcomeNoTrends
		return res, nil
	}
	lgr.Printf("[INFO] cycle %s: fetched %d trends, analyzing %d drafts", res.ID, len(trends), len(drafts))

	analysis := s.analyze(ctx, trends, drafts)
	if analysis == nil || !analysis.ShouldPost {
		lgr.Printf("[INFO] cycle %s: no draft matched current trends well enough", res.ID)
		res.Outcome = OutcomeNoMatch
		return res, nil
	}
	draft := findDraft(drafts, analysis.DraftID)
	if draft == nil {
		lgr.Printf("[WARN] cycle %s: model picked unknown draft #%d", res.ID, analysis.DraftID)
		res.Outcome = OutcomeNoMatch
		return res, nil
	}
	res.Analysis = analysis

	if analysis.Score < s.MinRelevanceScore {
		lgr.Printf("[INFO] cycle %s: best match #%d scored %d (min: %d), skipping",
			res.ID, analysis.DraftID, analysis.Score, s.MinRelevanceScore)
		res.Outcome = OutcomeBelowThreshold
		return res, nil
	}

	if dryRun {
		lgr.Printf("[INFO] cycle %s: dry run, would post draft #%d: %s", res.ID, analysis.DraftID, analysis.DraftText)
		s.notify(ctx, fmt.Sprintf("🔍 Dry Run Analysis\n\nWould post: %q\nMatching trend: %s\nScore: %d/100\nReason: %s",
			analysis.DraftText, analysis.MatchedTrend, analysis.Score, analysis.Reasoning))
		res.Outcome = OutcomeDryRun
		return res, nil
	}

	return s.post(ctx, res, draft, trends)
}

// post publishes the analyzed draft and records it. Poster failure leaves the queue untouched.
func (s *Scheduler) post(ctx context.Context, res CycleResult, draft *domain.Draft, trends []domain.Trend) (CycleResult, error) {
	analysis := res.Analysis
	postRes, err := s.Poster.Post(ctx, draft.Text, draft.Media)
	if err != nil {
		lgr.Printf("[ERROR] cycle %s: failed to post draft #%d: %v", res.ID, draft.ID, err)
		s.notify(ctx, fmt.Sprintf("❌ Failed to post draft #%d: %v", draft.ID, err))
		res.Outcome = OutcomePostFailed
		return res, nil
	}
	res.Post = postRes

	rec := domain.PostRecord{
		MatchedTrend: analysis.MatchedTrend,
		Score:        analysis.Score,
		Reasoning:    analysis.Reasoning,
		Trends:       domain.TrendNames(trends),
		PostURL:      postRes.URL,
	}
	if err := s.Queue.MarkPosted(ctx, draft.ID, rec); err != nil {
		lgr.Printf("[ERROR] cycle %s: draft #%d posted as %s but not recorded: %v", res.ID, draft.ID, postRes.URL, err)
		s.notify(ctx, fmt.Sprintf("⚠️ Posted draft #%d but failed to record it, remove it from the queue manually.\n\n🔗 %s",
			draft.ID, postRes.URL))
		res.Outcome = OutcomePostedUnrecorded
		return res, fmt.Errorf("mark draft %d posted: %w", draft.ID, err)
	}
	res.Outcome = OutcomePosted
	lgr.Printf("[INFO] cycle %s: posted draft #%d (trend: %s, score: %d)", res.ID, draft.ID, analysis.MatchedTrend, analysis.Score)

	remaining, err := s.Queue.QueueSize(ctx)
	if err != nil {
		lgr.Printf("[WARN] cycle %s: can't get queue size: %v", res.ID, err)
	}
	s.notify(ctx, fmt.Sprintf("✅ Posted!\n\n%q\n\n🔗 %s\n📈 Matched trend: %s\n💯 Score: %d/100\n💬 %s\n\n📋 %d drafts remaining in queue",
		draft.Text, postRes.URL, analysis.MatchedTrend, analysis.Score, analysis.Reasoning, remaining))
	return res, nil
}

// RankCycle ranks all queued drafts against current trends and returns the top limit results.
// limit <= 0 means the default of 5, values above 20 are capped. Never posts or mutates the queue.
func (s *Scheduler) RankCycle(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if limit <= 0 {
		limit = defaultRankLimit
	}
	limit = min(limit, maxRankLimit)

	drafts, err := s.Queue.ListQueued(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queued drafts: %w", err)
	}
	if len(drafts) == 0 {
		return []domain.Analysis{}, nil
	}

	trends := s.Trends.GetTrends(ctx)
	if len(trends) == 0 {
		return []domain.Analysis{}, nil
	}

	raw, err := s.Completer.Complete(ctx, llm.BuildRankingPrompt(trend.Text(trends), drafts))
	if err != nil {
		lgr.Printf("[WARN] ranking request failed: %v", err)
		return []domain.Analysis{}, nil
	}
	rankings := llm.ParseRanking(raw, llm.KnownDrafts(drafts))
	if len(rankings) > limit {
		rankings = rankings[:limit]
	}
	return rankings, nil
}

// PostByID posts a queued draft without analysis. Returns nil result and nil error when the
// draft is not queued, ErrBusy when a cycle is in progress. Poster errors are returned as is.
func (s *Scheduler) PostByID(ctx context.Context, id int64) (*domain.PostResult, error) {
	if !s.busy.TryAcquire(1) {
		return nil, domain.ErrBusy
	}
	defer s.busy.Release(1)

	drafts, err := s.Queue.ListQueued(ctx)
	if err != nil {
		return nil, fmt.Errorf("list queued drafts: %w", err)
	}
	draft := findDraft(drafts, id)
	if draft == nil {
		return nil, nil
	}

	res, err := s.Poster.Post(ctx, draft.Text, draft.Media)
	if err != nil {
		lgr.Printf("[ERROR] failed to post draft #%d: %v", id, err)
		return nil, fmt.Errorf("post draft %d: %w", id, err)
	}

	rec := domain.PostRecord{MatchedTrend: manualTrend, Score: 0, Reasoning: manualReasoning, Trends: []string{}, PostURL: res.URL}
	if err := s.Queue.MarkPosted(ctx, id, rec); err != nil {
		return res, fmt.Errorf("mark draft %d posted: %w", id, err)
	}
	lgr.Printf("[INFO] manually posted draft #%d, %s", id, res.URL)
	return res, nil
}

// analyze asks the model for the single best match. Model failures are logged and reported as no result.
func (s *Scheduler) analyze(ctx context.Context, trends []domain.Trend, drafts []domain.Draft) *domain.Analysis {
	raw, err := s.Completer.Complete(ctx, llm.BuildAnalysisPrompt(trend.Text(trends), drafts))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			lgr.Printf("[DEBUG] analysis canceled")
			return nil
		}
		lgr.Printf("[WARN] analysis request failed: %v", err)
		return nil
	}
	return llm.ParseSingle(raw, llm.KnownDrafts(drafts))
}

// inPostingHours checks the current hour against [start, end), wrapping past midnight when start > end
func (s *Scheduler) inPostingHours() bool {
	hour := s.Now().In(s.Location).Hour()
	if s.PostingHoursStart <= s.PostingHoursEnd {
		return hour >= s.PostingHoursStart && hour < s.PostingHoursEnd
	}
	return hour >= s.PostingHoursStart || hour < s.PostingHoursEnd
}

func (s *Scheduler) notify(ctx context.Context, msg string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, msg); err != nil {
		lgr.Printf("[ERROR] notification failed: %v", err)
	}
}

func findDraft(drafts []domain.Draft, id int64) *domain.Draft {
	for i := range drafts {
		if drafts[i].ID == id {
			return &drafts[i]
		}
	}
	return nil
}
