package scrapers

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"

	"github.com/jobscout/jobscout/internal/domain/models"
)

const (
	linkedinSearchURL = "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search"
	linkedinPageSize  = 25
)

var (
	linkedinCardRegex     = regexp.MustCompile(`(?s)<li>.*?</li>`)
	linkedinLinkRegex     = regexp.MustCompile(`(?s)<a[^>]+class="[^"]*base-card__full-link[^"]*"[^>]+href="([^"]+)"`)
	linkedinTitleRegex    = regexp.MustCompile(`(?s)<h3[^>]*class="[^"]*base-search-card__title[^"]*"[^>]*>(.*?)</h3>`)
	linkedinCompanyRegex  = regexp.MustCompile(`(?s)<h4[^>]*class="[^"]*base-search-card__subtitle[^"]*"[^>]*>(.*?)</h4>`)
	linkedinLocationRegex = regexp.MustCompile(`(?s)<span[^>]*class="[^"]*job-search-card__location[^"]*"[^>]*>(.*?)</span>`)
)

// LinkedInScraper fetches postings through the public guest search endpoint,
// which serves paginated HTML cards. LinkedIn blocks aggressively; HTTP 429
// and 403 surface as ErrRateLimited.
type LinkedInScraper struct {
	siteClient
}

func NewLinkedInScraper() *LinkedInScraper {
	return &LinkedInScraper{newSiteClient()}
}

func (s *LinkedInScraper) Name() string {
	return "linkedin"
}

func (s *LinkedInScraper) Fetch(ctx context.Context, query Query) ([]models.RawPosting, error) {

	if err := query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	var postings []models.RawPosting

	for start := 0; len(postings) < query.MaxResults; start += linkedinPageSize {

		page, err := s.fetchPage(ctx, query, start)
		if err != nil {
			return postings, fmt.Errorf("linkedin offset %d: %w", start, err)
		}
		if len(page) == 0 {
			break
		}

		postings = append(postings, page...)
		if len(page) < linkedinPageSize {
			break
		}
	}

	if len(postings) > query.MaxResults {
		postings = postings[:query.MaxResults]
	}
	return postings, nil
}

func (s *LinkedInScraper) fetchPage(ctx context.Context, query Query, start int) ([]models.RawPosting, error) {

	params := url.Values{}
	params.Set("keywords", query.Keyword)
	params.Set("start", strconv.Itoa(start))
	params.Set("f_TPR", "r86400") // last 24 hours, matches how often sources are re-scraped
	if query.Location != "" {
		params.Set("location", query.Location)
	}

	body, err := s.sendRequest(ctx, linkedinSearchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	return s.parseCards(string(body)), nil
}

// parseCards extracts postings from the HTML card list. Cards missing a
// title or link are skipped rather than failing the page.
func (s *LinkedInScraper) parseCards(page string) []models.RawPosting {

	var postings []models.RawPosting

	for _, card := range linkedinCardRegex.FindAllString(page, -1) {

		title := matchText(linkedinTitleRegex, card)
		link := matchText(linkedinLinkRegex, card)
		if title == "" || link == "" {
			continue
		}

		postings = append(postings, models.RawPosting{
			Title:    title,
			Company:  matchText(linkedinCompanyRegex, card),
			Location: matchText(linkedinLocationRegex, card),
			URL:      link,
			Source:   s.Name(),
		})
	}

	return postings
}

func matchText(re *regexp.Regexp, card string) string {
	match := re.FindStringSubmatch(card)
	if len(match) < 2 {
		return ""
	}
	return extractText(match[1])
}
