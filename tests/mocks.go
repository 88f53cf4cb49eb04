package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type stubResponse struct {
	status int
	body   string
}

// stubHTTPClient answers by the request's host, so one instance can stand in
// for every listing site at once.
type stubHTTPClient struct {
	responses map[string]stubResponse
}

func (c *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	for hostPart, resp := range c.responses {
		if strings.Contains(req.URL.Host, hostPart) {
			status := resp.status
			if status == 0 {
				status = http.StatusOK
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(bytes.NewBufferString(resp.body)),
			}, nil
		}
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(bytes.NewBufferString("no stub for " + req.URL.Host)),
	}, nil
}

type stubJob struct {
	title       string
	company     string
	url         string
	description string
	location    string
}

func naukriBody(jobs ...stubJob) string {
	details := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		details = append(details, map[string]any{
			"title":          job.title,
			"companyName":    job.company,
			"jdURL":          job.url,
			"jobDescription": job.description,
			"placeholders": []map[string]string{
				{"type": "location", "label": job.location},
			},
		})
	}

	body, err := json.Marshal(map[string]any{
		"noOfJobs":   len(jobs),
		"jobDetails": details,
	})
	if err != nil {
		panic(fmt.Sprintf("could not build naukri stub: %v", err))
	}
	return string(body)
}

func unstopBody(jobs ...stubJob) string {
	items := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		items = append(items, map[string]any{
			"title":        job.title,
			"public_url":   job.url,
			"organisation": map[string]string{"name": job.company},
			"jobDetail":    map[string]any{"locations": []string{job.location}},
			"seo_details":  []map[string]string{{"description": job.description}},
		})
	}

	body, err := json.Marshal(map[string]any{
		"data": map[string]any{"data": items},
	})
	if err != nil {
		panic(fmt.Sprintf("could not build unstop stub: %v", err))
	}
	return string(body)
}
