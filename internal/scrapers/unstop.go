package scrapers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jobscout/jobscout/internal/domain/models"
)

const unstopSearchURL = "https://unstop.com/api/public/opportunity/search-result"

type unstopResponse struct {
	Data struct {
		Data []unstopJob `json:"data"`
	} `json:"data"`
}

type unstopJob struct {
	Title        string `json:"title"`
	PublicURL    string `json:"public_url"`
	Organisation struct {
		Name string `json:"name"`
	} `json:"organisation"`
	JobDetail struct {
		Locations []string `json:"locations"`
		MinSalary int      `json:"min_salary"`
		MaxSalary int      `json:"max_salary"`
	} `json:"jobDetail"`
	SeoDetails []struct {
		Description string `json:"description"`
	} `json:"seo_details"`
}

// UnstopScraper fetches job-category opportunities from the Unstop public
// search API.
type UnstopScraper struct {
	siteClient
}

func NewUnstopScraper() *UnstopScraper {
	return &UnstopScraper{newSiteClient()}
}

func (s *UnstopScraper) Name() string {
	return "unstop"
}

func (s *UnstopScraper) Fetch(ctx context.Context, query Query) ([]models.RawPosting, error) {

	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	params := url.Values{}
	params.Set("opportunity", "jobs")
	params.Set("searchTerm", query.Keyword)
	params.Set("per_page", strconv.Itoa(query.MaxResults))

	header := http.Header{}
	header.Set("Accept", "application/json")

	body, err := s.sendRequest(ctx, unstopSearchURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, fmt.Errorf("unstop search: %w", err)
	}

	var response unstopResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error decoding JSON response: %v", err)
	}

	postings := make([]models.RawPosting, 0, len(response.Data.Data))
	for _, job := range response.Data.Data {
		if len(postings) >= query.MaxResults {
			break
		}

		posting := s.toPosting(job)
		if !locationMatches(posting.Location, query.Location) {
			continue
		}
		postings = append(postings, posting)
	}

	return postings, nil
}

// locationMatches filters postings client-side; the search API has no
// location parameter. Postings without location info are kept.
func locationMatches(postingLocation, queryLocation string) bool {
	if queryLocation == "" || postingLocation == "" {
		return true
	}
	return strings.Contains(strings.ToLower(postingLocation), strings.ToLower(queryLocation))
}

func (s *UnstopScraper) toPosting(job unstopJob) models.RawPosting {

	posting := models.RawPosting{
		Title:   job.Title,
		Company: job.Organisation.Name,
		URL:     job.PublicURL,
		Source:  s.Name(),
	}

	if len(job.JobDetail.Locations) > 0 {
		posting.Location = strings.Join(job.JobDetail.Locations, ", ")
	}

	if job.JobDetail.MaxSalary > 0 {
		posting.Salary = fmt.Sprintf("%d-%d", job.JobDetail.MinSalary, job.JobDetail.MaxSalary)
	}

	if len(job.SeoDetails) > 0 {
		posting.Description = extractText(job.SeoDetails[0].Description)
	}

	return posting
}
