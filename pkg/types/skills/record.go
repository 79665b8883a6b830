// Package skills defines the catalog record shared by the remote catalog
// client and the local workspace scanner.
package skills

import (
	"fmt"
	"time"
)

// Source tags where a SkillRecord came from
type Source string

const (
	// SourceRemote marks records returned by the remote search API
	SourceRemote Source = "remote"
	// SourceLocal marks records parsed from a SKILL.md in the workspace
	SourceLocal Source = "local"
)

// SkillRecord is a catalog entry, either remote or installed locally.
// Records are treated as immutable once constructed.
type SkillRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Stars       int64  `json:"stars"`
	GitHubURL   string `json:"githubUrl,omitempty"`
	UpdatedAt   int64  `json:"updatedAt"`
	Source      Source `json:"source"`
	// Directory is only set for local records
	Directory string `json:"directory,omitempty"`
}

// Installable reports whether the record carries a repository URL that an
// install session can be pointed at
func (r SkillRecord) Installable() bool {
	return r.GitHubURL != ""
}

// FormattedStars renders the popularity score the way the catalog UI shows it
func (r SkillRecord) FormattedStars() string {
	switch {
	case r.Stars >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(r.Stars)/1_000_000)
	case r.Stars >= 1_000:
		return fmt.Sprintf("%.1fk", float64(r.Stars)/1_000)
	default:
		return fmt.Sprintf("%d", r.Stars)
	}
}

// FormattedUpdatedAt renders UpdatedAt as yyyy-mm-dd in UTC
func (r SkillRecord) FormattedUpdatedAt() string {
	if r.UpdatedAt == 0 {
		return ""
	}
	return time.Unix(r.UpdatedAt, 0).UTC().Format("2006-01-02")
}
