package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/trendposter/pkg/domain"
)

// DraftRepository is the durable queue of drafts and their post log.
// It is the only writer of both tables.
type DraftRepository struct {
	db        *sqlx.DB
	maxQueued int
	now       func() time.Time
}

// draftSQL represents a draft row for SQL operations
type draftSQL struct {
	ID             int64      `db:"id"`
	Text           string     `db:"text"`
	CreatedAt      time.Time  `db:"created_at"`
	PostedAt       *time.Time `db:"posted_at"`
	RelevanceScore *int       `db:"relevance_score"`
	MatchedTrend   *string    `db:"matched_trend"`
	Status         string     `db:"status"`
	MediaPath      *string    `db:"media_path"`
	MediaKind      *string    `db:"media_kind"`
}

// postLogSQL represents a post_log row for SQL operations
type postLogSQL struct {
	ID             int64     `db:"id"`
	DraftID        int64     `db:"draft_id"`
	Text           string    `db:"text"`
	Trends         namesSQL  `db:"trends"`
	Reasoning      string    `db:"reasoning"`
	RelevanceScore int       `db:"relevance_score"`
	PostURL        string    `db:"post_url"`
	PostedAt       time.Time `db:"posted_at"`
}

// namesSQL is a JSON array of trend names for SQL operations
type namesSQL []string

// Value implements driver.Valuer for database storage
func (n namesSQL) Value() (driver.Value, error) {
	if n == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(n))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval
func (n *namesSQL) Scan(value interface{}) error {
	if value == nil {
		*n = namesSQL{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*n = namesSQL{}
		return nil
	}

	return json.Unmarshal(data, n)
}

// NewDraftRepository creates a new draft repository. maxQueued limits the number of
// queued drafts, zero disables the limit.
func NewDraftRepository(db *sqlx.DB, maxQueued int) *DraftRepository {
	return &DraftRepository{db: db, maxQueued: maxQueued, now: func() time.Time { return time.Now().UTC() }}
}

// Add validates and stores a new queued draft
func (r *DraftRepository) Add(ctx context.Context, text string, media *domain.Media) (*domain.Draft, error) {
	if err := domain.ValidatePostText(text, media); err != nil {
		return nil, err
	}

	if r.maxQueued > 0 {
		size, err := r.QueueSize(ctx)
		if err != nil {
			return nil, err
		}
		if size >= r.maxQueued {
			return nil, &domain.ValidationError{Field: "queue", Reason: fmt.Sprintf("queue is full (%d drafts max)", r.maxQueued)}
		}
	}

	row := draftSQL{Text: text, CreatedAt: r.now(), Status: string(domain.StatusQueued)}
	if media != nil {
		path, kind := media.Path, string(media.Kind)
		row.MediaPath, row.MediaKind = &path, &kind
	}

	query := `
		INSERT INTO drafts (text, created_at, status, media_path, media_kind)
		VALUES (:text, :created_at, :status, :media_path, :media_kind)
	`
	result, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return nil, fmt.Errorf("add draft: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get insert id: %w", err)
	}
	row.ID = id

	return row.toDomain(), nil
}

// ListQueued returns all queued drafts, oldest first
func (r *DraftRepository) ListQueued(ctx context.Context) ([]domain.Draft, error) {
	query := `SELECT * FROM drafts WHERE status = ? ORDER BY created_at ASC, id ASC`
	var rows []draftSQL
	if err := r.db.SelectContext(ctx, &rows, query, string(domain.StatusQueued)); err != nil {
		return nil, fmt.Errorf("list queued drafts: %w", err)
	}

	drafts := make([]domain.Draft, 0, len(rows))
	for i := range rows {
		drafts = append(drafts, *rows[i].toDomain())
	}
	return drafts, nil
}

// GetDraft returns a draft in any status
func (r *DraftRepository) GetDraft(ctx context.Context, id int64) (*domain.Draft, error) {
	var row draftSQL
	err := r.db.GetContext(ctx, &row, "SELECT * FROM drafts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return row.toDomain(), nil
}

// Remove moves a queued draft to removed. Returns false if the draft is unknown or not queued.
func (r *DraftRepository) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "UPDATE drafts SET status = ? WHERE id = ? AND status = ?",
		string(domain.StatusRemoved), id, string(domain.StatusQueued))
	if err != nil {
		return false, fmt.Errorf("remove draft: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get affected rows: %w", err)
	}
	return affected > 0, nil
}

// MarkPosted moves a queued draft to posted and appends its post log entry in one transaction.
// Returns domain.ErrNotFound for unknown drafts and domain.ErrNotQueued for drafts already out of the queue.
func (r *DraftRepository) MarkPosted(ctx context.Context, id int64, rec domain.PostRecord) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		err := r.markPostedTx(ctx, id, rec)
		if err == nil {
			return nil
		}
		if isLockError(err) {
			return err // repeater will retry this
		}
		return &criticalError{err: err}
	}, &criticalError{})
}

func (r *DraftRepository) markPostedTx(ctx context.Context, id int64, rec domain.PostRecord) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var row draftSQL
	err = tx.GetContext(ctx, &row, "SELECT * FROM drafts WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("draft %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("get draft: %w", err)
	}
	if row.Status != string(domain.StatusQueued) {
		return fmt.Errorf("draft %d is %s: %w", id, row.Status, domain.ErrNotQueued)
	}

	now := r.now()
	_, err = tx.ExecContext(ctx, `
		UPDATE drafts
		SET status = ?, posted_at = ?, matched_trend = ?, relevance_score = ?
		WHERE id = ? AND status = ?`,
		string(domain.StatusPosted), now, rec.MatchedTrend, rec.Score, id, string(domain.StatusQueued))
	if err != nil {
		return fmt.Errorf("update draft status: %w", err)
	}

	entry := postLogSQL{
		DraftID:        id,
		Text:           row.Text,
		Trends:         namesSQL(rec.Trends),
		Reasoning:      rec.Reasoning,
		RelevanceScore: rec.Score,
		PostURL:        rec.PostURL,
		PostedAt:       now,
	}
	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO post_log (draft_id, text, trends, reasoning, relevance_score, post_url, posted_at)
		VALUES (:draft_id, :text, :trends, :reasoning, :relevance_score, :post_url, :posted_at)`, entry)
	if err != nil {
		return fmt.Errorf("insert post log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PostHistory returns the most recent post log entries, newest first
func (r *DraftRepository) PostHistory(ctx context.Context, limit int) ([]domain.PostLogEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []postLogSQL
	err := r.db.SelectContext(ctx, &rows, "SELECT * FROM post_log ORDER BY posted_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("get post history: %w", err)
	}

	entries := make([]domain.PostLogEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, domain.PostLogEntry{
			ID:             row.ID,
			DraftID:        row.DraftID,
			Text:           row.Text,
			Trends:         []string(row.Trends),
			Reasoning:      row.Reasoning,
			RelevanceScore: row.RelevanceScore,
			PostURL:        row.PostURL,
			PostedAt:       row.PostedAt,
		})
	}
	return entries, nil
}

// QueueSize returns the number of queued drafts
func (r *DraftRepository) QueueSize(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM drafts WHERE status = ?", string(domain.StatusQueued)); err != nil {
		return 0, fmt.Errorf("count queued drafts: %w", err)
	}
	return count, nil
}

// ExpireOlderThan moves queued drafts created before now-age to expired, returns number of expired drafts
func (r *DraftRepository) ExpireOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := r.now().Add(-age)
	res, err := r.db.ExecContext(ctx, "UPDATE drafts SET status = ? WHERE status = ? AND created_at < ?",
		string(domain.StatusExpired), string(domain.StatusQueued), cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire drafts: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get affected rows: %w", err)
	}
	return affected, nil
}

// toDomain converts draftSQL to domain.Draft
func (d *draftSQL) toDomain() *domain.Draft {
	draft := &domain.Draft{
		ID:             d.ID,
		Text:           d.Text,
		CreatedAt:      d.CreatedAt,
		PostedAt:       d.PostedAt,
		RelevanceScore: d.RelevanceScore,
		MatchedTrend:   d.MatchedTrend,
		Status:         domain.DraftStatus(d.Status),
	}
	if d.MediaPath != nil && *d.MediaPath != "" {
		draft.Media = &domain.Media{Path: *d.MediaPath}
		if d.MediaKind != nil {
			draft.Media.Kind = domain.MediaKind(*d.MediaKind)
		}
	}
	return draft
}
