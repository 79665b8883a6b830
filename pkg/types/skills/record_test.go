package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormattedStars(t *testing.T) {
	tests := []struct {
		stars    int64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0k"},
		{1240, "1.2k"},
		{500000, "500.0k"},
		{1_000_000, "1.0M"},
		{3_460_000, "3.5M"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, SkillRecord{Stars: tt.stars}.FormattedStars())
		})
	}
}

func TestFormattedUpdatedAt(t *testing.T) {
	assert.Equal(t, "", SkillRecord{}.FormattedUpdatedAt())
	assert.Equal(t, "2023-11-14", SkillRecord{UpdatedAt: 1700000000}.FormattedUpdatedAt())
}

func TestInstallable(t *testing.T) {
	assert.False(t, SkillRecord{ID: "x"}.Installable())
	assert.True(t, SkillRecord{ID: "x", GitHubURL: "https://github.com/org/repo"}.Installable())
}
