package domain

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePostText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		media   *Media
		wantErr bool
	}{
		{name: "plain text", text: "hello world"},
		{name: "exactly max", text: strings.Repeat("a", MaxPostLength)},
		{name: "max in multibyte runes", text: strings.Repeat("é", MaxPostLength)},
		{name: "too long", text: strings.Repeat("a", MaxPostLength+1), wantErr: true},
		{name: "empty without media", text: "", wantErr: true},
		{name: "empty with photo", text: "", media: &Media{Path: "/tmp/a.png", Kind: MediaPhoto}},
		{name: "bad media kind", text: "x", media: &Media{Path: "/tmp/a.gif", Kind: "gif"}, wantErr: true},
		{name: "media without path", text: "x", media: &Media{Kind: MediaVideo}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePostText(tt.text, tt.media)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidationError(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsValidationError(t *testing.T) {
	wrapped := fmt.Errorf("add draft: %w", &ValidationError{Field: "text", Reason: "too long"})
	assert.True(t, IsValidationError(wrapped))
	assert.Equal(t, "add draft: invalid text: too long", wrapped.Error())
	assert.False(t, IsValidationError(ErrNotFound))
}

func TestTrendNames(t *testing.T) {
	names := TrendNames([]Trend{{Name: "AI"}, {Name: "Go", Volume: "10K"}})
	assert.Equal(t, []string{"AI", "Go"}, names)
	assert.Empty(t, TrendNames(nil))
}
