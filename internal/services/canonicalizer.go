package services

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/jobscout/jobscout/internal/domain/models"
	"github.com/samber/lo"
)

// placeholders the listing sites emit for missing fields
var absentMarkers = map[string]struct{}{
	"n/a":  {},
	"na":   {},
	"-":    {},
	"none": {},
	"null": {},
}

// trackingParams are query parameters stripped during URL normalization, so
// the same posting reached via different referrers dedups to one key.
var trackingParams = []string{"refid", "trackingid", "src", "sid", "ref"}

// Canonicalize turns a raw posting into a canonical job: fields trimmed,
// placeholder markers normalized to absent, identity key derived from the
// source and normalized URL (or from title/company/location when the
// posting carries no URL).
func Canonicalize(raw models.RawPosting, keyword string, scrapedAt time.Time) models.Job {

	job := models.Job{
		Title:          cleanField(raw.Title),
		Company:        cleanField(raw.Company),
		Location:       cleanField(raw.Location),
		ExperienceText: cleanField(raw.Experience),
		SalaryText:     cleanField(raw.Salary),
		Description:    cleanField(raw.Description),
		URL:            cleanField(raw.URL),
		Source:         strings.ToLower(strings.TrimSpace(raw.Source)),
		Keyword:        strings.ToLower(strings.TrimSpace(keyword)),
		ScrapedAt:      scrapedAt,
	}

	job.Domain = models.InferDomain(job.Keyword, job.Title)
	job.IdentityKey = identityKey(job)
	return job
}

// Deduplicate drops postings resolving to an already-seen identity key,
// keeping the first occurrence. Order is preserved.
func Deduplicate(jobs []models.Job) []models.Job {
	seen := make(map[string]struct{}, len(jobs))
	return lo.Filter(jobs, func(job models.Job, _ int) bool {
		if _, ok := seen[job.IdentityKey]; ok {
			return false
		}
		seen[job.IdentityKey] = struct{}{}
		return true
	})
}

func cleanField(value string) string {
	value = strings.TrimSpace(value)
	if _, absent := absentMarkers[strings.ToLower(value)]; absent {
		return ""
	}
	return value
}

func identityKey(job models.Job) string {
	if job.URL != "" {
		return hashKey(job.Source + "|" + normalizeURL(job.URL))
	}

	return hashKey(strings.Join([]string{
		"meta",
		job.Source,
		strings.ToLower(job.Title),
		strings.ToLower(job.Company),
		strings.ToLower(job.Location),
	}, "|"))
}

func hashKey(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// normalizeURL lowercases scheme and host, strips the fragment and known
// tracking parameters, and trims a trailing slash.
func normalizeURL(rawURL string) string {

	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return strings.ToLower(strings.TrimRight(rawURL, "/"))
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	query := parsed.Query()
	for key := range query {
		if lo.Contains(trackingParams, strings.ToLower(key)) {
			query.Del(key)
		}
	}
	parsed.RawQuery = query.Encode()

	return strings.TrimRight(parsed.String(), "/")
}
