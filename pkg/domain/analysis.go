package domain

// Analysis is the typed result of a model judging drafts against trends
type Analysis struct {
	DraftID      int64  `json:"draft_id"`
	DraftText    string `json:"draft_text"`
	Score        int    `json:"relevance_score"` // 0-100
	MatchedTrend string `json:"matched_trend"`
	Reasoning    string `json:"reasoning"`
	ShouldPost   bool   `json:"should_post"`
}
