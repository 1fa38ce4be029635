package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxPostLength is the maximum number of characters in a single post
const MaxPostLength = 280

// DraftStatus represents lifecycle state of a queued draft
type DraftStatus string

// draft statuses. queued is the only non-terminal one.
const (
	StatusQueued  DraftStatus = "queued"
	StatusPosted  DraftStatus = "posted"
	StatusRemoved DraftStatus = "removed"
	StatusExpired DraftStatus = "expired"
)

// MediaKind represents the type of attached media
type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

// Media is an optional attachment of a draft
type Media struct {
	Path string
	Kind MediaKind
}

// Draft represents a user-submitted candidate post waiting in the queue
type Draft struct {
	ID             int64
	Text           string
	CreatedAt      time.Time
	PostedAt       *time.Time
	RelevanceScore *int
	MatchedTrend   *string
	Status         DraftStatus
	Media          *Media
}

// PostRecord holds details recorded when a draft gets posted
type PostRecord struct {
	MatchedTrend string
	Score        int
	Reasoning    string
	Trends       []string // names of trends considered at post time
	PostURL      string
}

// PostLogEntry is an immutable audit record of a successful post
type PostLogEntry struct {
	ID             int64
	DraftID        int64
	Text           string
	Trends         []string
	Reasoning      string
	RelevanceScore int
	PostURL        string
	PostedAt       time.Time
}

// PostResult is returned by a poster after successful publication
type PostResult struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ValidatePostText checks text length and emptiness. Empty text is allowed only with media.
func ValidatePostText(text string, media *Media) error {
	if n := utf8.RuneCountInString(text); n > MaxPostLength {
		return &ValidationError{Field: "text", Reason: fmt.Sprintf("too long (%d chars, max %d)", n, MaxPostLength)}
	}
	if text == "" && media == nil {
		return &ValidationError{Field: "text", Reason: "empty text without media"}
	}
	if media != nil {
		if media.Path == "" {
			return &ValidationError{Field: "media", Reason: "empty media path"}
		}
		if media.Kind != MediaPhoto && media.Kind != MediaVideo {
			return &ValidationError{Field: "media", Reason: fmt.Sprintf("unsupported media kind %q", media.Kind)}
		}
	}
	return nil
}
