package models

import "time"

// RawPosting is what a source adapter extracts from an external listing
// site. Fields are unvalidated and may carry placeholder values like "N/A".
type RawPosting struct {
	Title       string
	Company     string
	Location    string
	Experience  string
	Salary      string
	Description string
	URL         string
	Source      string
}

// Job is the canonical, deduplicated posting kept in the store.
// IdentityKey is derived from (source, normalized URL), or from
// title/company/location when the posting has no usable URL.
type Job struct {
	ID             int       `gorm:"primaryKey" json:"-"`
	IdentityKey    string    `gorm:"uniqueIndex;size:64" json:"-"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	ExperienceText string    `json:"experience,omitempty"`
	SalaryText     string    `json:"salary,omitempty"`
	Description    string    `json:"description,omitempty"`
	URL            string    `json:"url,omitempty"`
	Source         string    `gorm:"index" json:"source"`
	Domain         string    `gorm:"index" json:"domain,omitempty"`
	Keyword        string    `gorm:"index" json:"keyword,omitempty"`
	ScrapedAt      time.Time `json:"scraped_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}

// SearchText is the text block skills are matched against.
func (j Job) SearchText() string {
	return j.Title + " " + j.Description + " " + j.Domain
}
