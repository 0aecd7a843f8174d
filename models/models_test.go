package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIssueType(t *testing.T) {
	for _, issue := range ValidIssueTypes {
		assert.True(t, IsValidIssueType(issue))
	}
	assert.False(t, IsValidIssueType(""))
	assert.False(t, IsValidIssueType("doors_squeaky"))
	assert.False(t, IsValidIssueType("everything_fine"))
}

func TestMagicLinkUsable(t *testing.T) {
	now := time.Now()
	used := now.Add(-time.Minute)

	live := MagicLink{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, live.Usable(now))

	expired := MagicLink{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Usable(now))

	spent := MagicLink{ExpiresAt: now.Add(time.Hour), UsedAt: &used}
	assert.False(t, spent.Usable(now))
}

func TestElevatorLanguages(t *testing.T) {
	var e Elevator

	e.SetLanguages([]string{" EN ", "de", ""})
	assert.Equal(t, "en,de", e.Languages)
	assert.Equal(t, []string{"en", "de"}, e.LanguageList())

	e.SetLanguages(nil)
	assert.Equal(t, []string{DefaultLanguage}, e.LanguageList())
}
