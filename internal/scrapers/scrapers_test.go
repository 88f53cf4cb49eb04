package scrapers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHTTPClient struct {
	mock.Mock
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

func responseFromFile(t *testing.T, path string) *http.Response {
	file, err := os.ReadFile(path)
	require.NoError(t, err)

	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewBuffer(file)),
	}
}

func Test_QueryValidation(t *testing.T) {

	assert.Error(t, Query{Keyword: "", MaxResults: 5}.Validate())
	assert.Error(t, Query{Keyword: "golang", MaxResults: 0}.Validate())
	assert.Error(t, Query{Keyword: "golang", MaxResults: 51}.Validate())
	assert.NoError(t, Query{Keyword: "golang", MaxResults: 50}.Validate())
}

func Test_Registry_OpenSet(t *testing.T) {

	registry := NewDefaultRegistry(1)
	assert.Equal(t, []string{"linkedin", "naukri", "unstop"}, registry.Names())

	_, ok := registry.Get("monster")
	assert.False(t, ok)

	registry.Register(NewNaukriScraper())
	source, ok := registry.Get("naukri")
	assert.True(t, ok)
	assert.Equal(t, "naukri", source.Name())
}

func Test_Naukri_Fetch_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == naukriSearchURL+"?keyword=python+developer&noOfResults=20&"+
			"pageNo=1&searchType=adv&urlType=search_by_keyword" &&
			req.Header.Get("appid") == "109"
	})).Return(responseFromFile(t, "testdata/naukri_search.json"), nil)

	scraper := NewNaukriScraper()
	scraper.SetHTTPClient(mockClient)

	postings, err := scraper.Fetch(context.Background(), Query{Keyword: "python developer", MaxResults: 2})
	assert.NoError(err)

	require.Len(t, postings, 2)
	assert.Equal("Python Developer", postings[0].Title)
	assert.Equal("Acme Software", postings[0].Company)
	assert.Equal("Bangalore", postings[0].Location)
	assert.Equal("3-5 Yrs", postings[0].Experience)
	assert.Equal("Not disclosed", postings[0].Salary)
	assert.Equal("https://www.naukri.com/job-listings-python-developer-acme-software-bangalore-3-to-5-years-120924012345", postings[0].URL)
	assert.Contains(postings[0].Description, "We need a Python developer")
	assert.Contains(postings[0].Description, "python, django, sql")
	assert.Equal("naukri", postings[0].Source)

	assert.Equal("Senior Java Engineer", postings[1].Title)
	assert.Empty(postings[1].Salary)
}

func Test_Naukri_Fetch_LocationForwarded(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.Query().Get("location") == "bangalore"
	})).Return(responseFromFile(t, "testdata/naukri_search.json"), nil)

	scraper := NewNaukriScraper()
	scraper.SetHTTPClient(mockClient)

	_, err := scraper.Fetch(context.Background(), Query{Keyword: "python", Location: "bangalore", MaxResults: 2})
	assert.NoError(t, err)
	mockClient.AssertExpectations(t)
}

func Test_LinkedIn_Fetch_ParsesCards(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == linkedinSearchURL+"?f_TPR=r86400&keywords=python&start=0"
	})).Return(responseFromFile(t, "testdata/linkedin_search.html"), nil)

	scraper := NewLinkedInScraper()
	scraper.SetHTTPClient(mockClient)

	postings, err := scraper.Fetch(context.Background(), Query{Keyword: "python", MaxResults: 10})
	assert.NoError(err)

	// the card without a link must be skipped, not fail the page
	require.Len(t, postings, 2)
	assert.Equal("Python Backend Engineer", postings[0].Title)
	assert.Equal("Initech", postings[0].Company)
	assert.Equal("Bengaluru, Karnataka, India", postings[0].Location)
	assert.Contains(postings[0].URL, "linkedin.com/jobs/view/python-backend-engineer")
	assert.Equal("linkedin", postings[0].Source)
	assert.Equal("Data Analyst", postings[1].Title)
}

func Test_LinkedIn_Fetch_RateLimited(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusTooManyRequests,
		Body:       io.NopCloser(bytes.NewBufferString("blocked")),
	}, nil)

	scraper := NewLinkedInScraper()
	scraper.SetHTTPClient(mockClient)

	postings, err := scraper.Fetch(context.Background(), Query{Keyword: "python", MaxResults: 5})
	assert.Empty(t, postings)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func Test_Unstop_Fetch_ShouldBeSuccessful(t *testing.T) {

	assert := assert.New(t)

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.URL.String() == unstopSearchURL+"?opportunity=jobs&per_page=5&searchTerm=software"
	})).Return(responseFromFile(t, "testdata/unstop_search.json"), nil)

	scraper := NewUnstopScraper()
	scraper.SetHTTPClient(mockClient)

	postings, err := scraper.Fetch(context.Background(), Query{Keyword: "software", MaxResults: 5})
	assert.NoError(err)

	require.Len(t, postings, 2)
	assert.Equal("Software Engineer - Platform", postings[0].Title)
	assert.Equal("Vandelay Industries", postings[0].Company)
	assert.Equal("Mumbai, Remote", postings[0].Location)
	assert.Equal("800000-1400000", postings[0].Salary)
	assert.Contains(postings[0].Description, "Go and Kubernetes")
	assert.Equal("unstop", postings[0].Source)

	assert.Empty(postings[1].Description)
	assert.Empty(postings[1].Salary)
}

func Test_Unstop_Fetch_LocationFiltered(t *testing.T) {

	mockClient := &mockHTTPClient{}
	mockClient.On("Do", mock.Anything).Return(responseFromFile(t, "testdata/unstop_search.json"), nil)

	scraper := NewUnstopScraper()
	scraper.SetHTTPClient(mockClient)

	postings, err := scraper.Fetch(context.Background(),
		Query{Keyword: "software", Location: "mumbai", MaxResults: 5})
	assert.NoError(t, err)

	require.Len(t, postings, 1)
	assert.Equal(t, "Software Engineer - Platform", postings[0].Title)
}

func Test_Fetch_InvalidQuery(t *testing.T) {

	scraper := NewNaukriScraper()
	_, err := scraper.Fetch(context.Background(), Query{Keyword: "", MaxResults: 5})
	assert.Error(t, err)
}
