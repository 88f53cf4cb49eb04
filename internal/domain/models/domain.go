package models

import "strings"

// domainPatterns maps a domain tag to substrings looked up in the search
// keyword and title. First match wins, in the listed order.
var domainPatterns = []struct {
	tag      string
	patterns []string
}{
	{"data", []string{"data scientist", "data analyst", "machine learning", "data engineer"}},
	{"security", []string{"security", "cybersecurity"}},
	{"design", []string{"designer", "ui ux", "ux designer", "graphic"}},
	{"business", []string{"business analyst", "product manager", "sales", "marketing"}},
	{"hr", []string{"human resources", "recruiter"}},
	{"healthcare", []string{"healthcare", "nurse", "medical"}},
	{"tech", []string{"developer", "engineer", "software", "devops", "cloud", "full stack", "frontend", "backend", "mobile app"}},
}

// InferDomain classifies a posting into a coarse domain tag based on the
// query keyword and the job title. Returns "" when nothing matches.
func InferDomain(keyword, title string) string {
	haystack := strings.ToLower(keyword + " " + title)
	for _, d := range domainPatterns {
		for _, p := range d.patterns {
			if strings.Contains(haystack, p) {
				return d.tag
			}
		}
	}
	return ""
}
