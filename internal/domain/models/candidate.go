package models

// CandidateProfile is produced by the resume-extraction collaborator.
// Skills are expected to arrive as plain tokens; the matcher normalizes
// them again defensively.
type CandidateProfile struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Mobile          string   `json:"mobile"`
	YearsExperience int      `json:"years_experience"`
	Domain          string   `json:"domain"`
	Skills          []string `json:"skills"`
}

// MatchResult annotates a stored job with how well it fits a skill set.
type MatchResult struct {
	Job
	MatchScore     int      `json:"match_score"`
	MatchingSkills []string `json:"matching_skills"`
}
