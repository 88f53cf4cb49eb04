package services

import (
	"context"
	"math"
	"sort"
	"strings"

	"github.com/jobscout/jobscout/internal/domain/models"
	"github.com/jobscout/jobscout/internal/repositories"
	"github.com/samber/lo"
)

const (
	// matchPoolLimit bounds how many stored jobs one recommendation scores
	matchPoolLimit = 200
	maxMatches     = 50
)

type jobSearcher interface {
	Search(ctx context.Context, filter repositories.JobFilter, limit int) ([]models.Job, error)
}

// Matcher ranks already-stored jobs against a candidate skill set. It never
// scrapes.
type Matcher struct {
	jobs jobSearcher
}

func NewMatcher(jobs jobSearcher) *Matcher {
	return &Matcher{jobs: jobs}
}

// Recommend scores the stored jobs passing the optional domain/location
// filters. A job scores round(100 * matched / len(skills)); zero-match jobs
// are dropped. An empty skill set degrades to the most recent jobs with a
// zero score.
func (m *Matcher) Recommend(ctx context.Context, skills []string, domain, location string) ([]models.MatchResult, error) {

	normalized := normalizeSkills(skills)

	jobs, err := m.jobs.Search(ctx, repositories.JobFilter{
		Domain:   domain,
		Location: location,
	}, matchPoolLimit)
	if err != nil {
		return nil, err
	}

	if len(normalized) == 0 {
		results := lo.Map(jobs, func(job models.Job, _ int) models.MatchResult {
			return models.MatchResult{Job: job}
		})
		return capMatches(results), nil
	}

	var results []models.MatchResult
	for _, job := range jobs {

		matched := matchingSkills(normalized, strings.ToLower(job.SearchText()))
		if len(matched) == 0 {
			continue
		}

		results = append(results, models.MatchResult{
			Job:            job,
			MatchScore:     score(len(matched), len(normalized)),
			MatchingSkills: matched,
		})
	}

	// jobs arrive ordered by recency; the stable sort keeps that as the
	// tie-break within equal scores
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	return capMatches(results), nil
}

// RecommendFor ranks jobs for an extracted candidate profile, preferring
// the profile's own domain as the filter.
func (m *Matcher) RecommendFor(ctx context.Context, profile models.CandidateProfile, location string) ([]models.MatchResult, error) {
	return m.Recommend(ctx, profile.Skills, profile.Domain, location)
}

func normalizeSkills(skills []string) []string {
	cleaned := lo.FilterMap(skills, func(skill string, _ int) (string, bool) {
		skill = strings.ToLower(strings.TrimSpace(skill))
		return skill, skill != ""
	})
	return lo.Uniq(cleaned)
}

// matchingSkills returns the subset of skills found in the text, preserving
// the candidate's skill order.
func matchingSkills(skills []string, text string) []string {
	return lo.Filter(skills, func(skill string, _ int) bool {
		return strings.Contains(text, skill)
	})
}

func score(matched, total int) int {
	if total < 1 {
		total = 1
	}
	value := int(math.Round(100 * float64(matched) / float64(total)))
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func capMatches(results []models.MatchResult) []models.MatchResult {
	if len(results) > maxMatches {
		return results[:maxMatches]
	}
	return results
}
