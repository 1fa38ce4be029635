package llm

import (
	"fmt"
	"strings"

	"github.com/umputun/trendposter/pkg/domain"
)

const analysisPrompt = `You are a social media strategist. Analyze a queue of draft posts and decide which one, if any, is most relevant to what is trending on X right now.

## Current Trending Topics
%s

## Queued Posts
%s

## Instructions
1. For each queued post, assess how well it connects to any current trend.
2. Pick the single best post to publish RIGHT NOW based on trend relevance.
3. If no post is even slightly relevant to any trend, say so.

Respond with ONLY valid JSON (no markdown, no backticks):
{
    "best_tweet_id": <id or null if none are relevant>,
    "relevance_score": <0-100>,
    "matched_trend": "<the trend it matches or null>",
    "reasoning": "<1-2 sentence explanation>",
    "should_post": <true/false>
}
`

const rankingPrompt = `You are a social media strategist. Score ALL queued draft posts by how relevant they are to what is trending on X right now.

## Current Trending Topics
%s

## Queued Posts
%s

## Instructions
1. Score EVERY queued post from 0-100 based on relevance to current trends.
2. For each post, identify which trend it matches best, if any.
3. Give a brief reason for each score.

Respond with ONLY valid JSON (no markdown, no backticks):
{
    "rankings": [
        {
            "id": <post id>,
            "relevance_score": <0-100>,
            "matched_trend": "<the trend it matches or null>",
            "reasoning": "<1 sentence explanation>"
        }
    ]
}

Sort the rankings array from highest to lowest relevance_score.
`

// BuildAnalysisPrompt makes a prompt asking for the single best draft for the given trends
func BuildAnalysisPrompt(trendsText string, drafts []domain.Draft) string {
	return fmt.Sprintf(analysisPrompt, trendsText, formatDrafts(drafts))
}

// BuildRankingPrompt makes a prompt asking to score every draft against the given trends
func BuildRankingPrompt(trendsText string, drafts []domain.Draft) string {
	return fmt.Sprintf(rankingPrompt, trendsText, formatDrafts(drafts))
}

// KnownDrafts maps draft ids to texts, used to resolve ids returned by the model
func KnownDrafts(drafts []domain.Draft) map[int64]string {
	res := make(map[int64]string, len(drafts))
	for _, d := range drafts {
		res[d.ID] = d.Text
	}
	return res
}

func formatDrafts(drafts []domain.Draft) string {
	lines := make([]string, 0, len(drafts))
	for _, d := range drafts {
		lines = append(lines, fmt.Sprintf("- ID %d: %q", d.ID, d.Text))
	}
	return strings.Join(lines, "\n")
}
