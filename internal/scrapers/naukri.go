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

const (
	naukriSearchURL = "https://www.naukri.com/jobapi/v3/search"
	naukriPageSize  = 20
)

type naukriResponse struct {
	NoOfJobs   int         `json:"noOfJobs"`
	JobDetails []naukriJob `json:"jobDetails"`
}

type naukriJob struct {
	Title          string              `json:"title"`
	CompanyName    string              `json:"companyName"`
	JdURL          string              `json:"jdURL"`
	JobDescription string              `json:"jobDescription"`
	TagsAndSkills  string              `json:"tagsAndSkills"`
	Placeholders   []naukriPlaceholder `json:"placeholders"`
}

type naukriPlaceholder struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// NaukriScraper fetches postings from the Naukri search API.
type NaukriScraper struct {
	siteClient
}

func NewNaukriScraper() *NaukriScraper {
	return &NaukriScraper{newSiteClient()}
}

func (s *NaukriScraper) Name() string {
	return "naukri"
}

func (s *NaukriScraper) Fetch(ctx context.Context, query Query) ([]models.RawPosting, error) {

	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var postings []models.RawPosting

	for pageNo := 1; len(postings) < query.MaxResults; pageNo++ {

		page, err := s.fetchPage(ctx, query, pageNo)
		if err != nil {
			return postings, fmt.Errorf("naukri page %d: %w", pageNo, err)
		}
		if len(page) == 0 {
			break
		}

		postings = append(postings, page...)
		if len(page) < naukriPageSize {
			break
		}
	}

	if len(postings) > query.MaxResults {
		postings = postings[:query.MaxResults]
	}
	return postings, nil
}

func (s *NaukriScraper) fetchPage(ctx context.Context, query Query, pageNo int) ([]models.RawPosting, error) {

	params := url.Values{}
	params.Set("keyword", query.Keyword)
	params.Set("noOfResults", strconv.Itoa(naukriPageSize))
	params.Set("pageNo", strconv.Itoa(pageNo))
	params.Set("urlType", "search_by_keyword")
	params.Set("searchType", "adv")
	if query.Location != "" {
		params.Set("location", query.Location)
	}

	// the search API rejects requests without the web-app identifiers
	header := http.Header{}
	header.Set("appid", "109")
	header.Set("systemid", "109")
	header.Set("Accept", "application/json")

	body, err := s.sendRequest(ctx, naukriSearchURL+"?"+params.Encode(), header)
	if err != nil {
		return nil, err
	}

	var response naukriResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("error decoding JSON response: %v", err)
	}

	postings := make([]models.RawPosting, 0, len(response.JobDetails))
	for _, job := range response.JobDetails {
		postings = append(postings, s.toPosting(job))
	}
	return postings, nil
}

func (s *NaukriScraper) toPosting(job naukriJob) models.RawPosting {

	posting := models.RawPosting{
		Title:       job.Title,
		Company:     job.CompanyName,
		Description: extractText(job.JobDescription),
		Source:      s.Name(),
	}

	if job.TagsAndSkills != "" {
		posting.Description += " Skills: " + strings.ReplaceAll(job.TagsAndSkills, ",", ", ")
	}

	if job.JdURL != "" {
		posting.URL = "https://www.naukri.com" + job.JdURL
	}

	for _, placeholder := range job.Placeholders {
		switch placeholder.Type {
		case "experience":
			posting.Experience = placeholder.Label
		case "salary":
			posting.Salary = placeholder.Label
		case "location":
			posting.Location = placeholder.Label
		}
	}

	return posting
}
