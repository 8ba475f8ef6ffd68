package nico

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"testing"
)

// seriesMarkup renders a minimal series page: optional canonical link plus
// the initial-state attribute, entity-escaped the way servers emit it.
func seriesMarkup(canonical, initialData string) []byte {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head>")
	if canonical != "" {
		fmt.Fprintf(&b, `<link rel="canonical" href="%s">`, canonical)
	}
	b.WriteString("</head><body>")
	if initialData != "" {
		fmt.Fprintf(&b, `<div id="js-initial-userpage-data" data-initial-data="%s"></div>`,
			html.EscapeString(initialData))
	}
	b.WriteString("</body></html>")
	return []byte(b.String())
}

const sampleInitialData = `{
	"nvapi": [{
		"body": {
			"data": {
				"totalCount": 3,
				"detail": {"title": "My Series", "description": "weekly uploads"},
				"items": [
					{"video": {
						"id": "sm100",
						"title": "episode one",
						"shortDescription": "the first one",
						"registeredAt": "2024-01-02T03:04:05+09:00",
						"thumbnail": {"listingUrl": "https://img.example/sm100.jpg"}
					}},
					{"video": {
						"id": "sm101",
						"title": "episode two",
						"shortDescription": "the second one",
						"registeredAt": "2024-01-09T03:04:05+09:00",
						"thumbnail": {"listingUrl": "https://img.example/sm101.jpg"}
					}}
				]
			}
		}
	}]
}`

func TestParsePage(t *testing.T) {
	page, err := ParsePage(seriesMarkup("https://www.nicovideo.jp/series/123", sampleInitialData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if page.CanonicalURL != "https://www.nicovideo.jp/series/123" {
		t.Errorf("canonical = %q", page.CanonicalURL)
	}
	if page.Data.TotalCount != 3 {
		t.Errorf("totalCount = %d, want 3", page.Data.TotalCount)
	}
	if page.Data.Detail.Title != "My Series" {
		t.Errorf("title = %q", page.Data.Detail.Title)
	}
	if page.Data.Detail.Description != "weekly uploads" {
		t.Errorf("description = %q", page.Data.Detail.Description)
	}
	if len(page.Data.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(page.Data.Items))
	}

	v := page.Data.Items[0].Video
	if v.ID != "sm100" {
		t.Errorf("video id = %q", v.ID)
	}
	if v.Title != "episode one" {
		t.Errorf("video title = %q", v.Title)
	}
	if v.ShortDescription != "the first one" {
		t.Errorf("video description = %q", v.ShortDescription)
	}
	if v.RegisteredAt != "2024-01-02T03:04:05+09:00" {
		t.Errorf("registeredAt = %q", v.RegisteredAt)
	}
	if v.Thumbnail.ListingURL != "https://img.example/sm100.jpg" {
		t.Errorf("thumbnail = %q", v.Thumbnail.ListingURL)
	}
}

func TestParsePage_MissingCanonicalTolerated(t *testing.T) {
	page, err := ParsePage(seriesMarkup("", sampleInitialData))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.CanonicalURL != "" {
		t.Errorf("canonical = %q, want empty", page.CanonicalURL)
	}
	if page.Data.TotalCount != 3 {
		t.Errorf("totalCount = %d, want 3", page.Data.TotalCount)
	}
}

func TestParsePage_MissingInitialData(t *testing.T) {
	_, err := ParsePage(seriesMarkup("https://example.test/series/1", ""))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("want ParseError, got %v", err)
	}
}

func TestParsePage_MalformedJSON(t *testing.T) {
	_, err := ParsePage(seriesMarkup("", `{"nvapi": [`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("want ParseError, got %v", err)
	}
}

func TestParsePage_EmptyAPILog(t *testing.T) {
	_, err := ParsePage(seriesMarkup("", `{"nvapi": []}`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("want ParseError, got %v", err)
	}
}

// A payload that decodes but lacks the expected nested fields is a broken
// page contract, not an empty series.
func TestParsePage_MissingNestedFields(t *testing.T) {
	cases := map[string]string{
		"no data":  `{"nvapi": [{"body": {}}]}`,
		"no items": `{"nvapi": [{"body": {"data": {"totalCount": 0, "detail": {"title": "x"}}}}]}`,
	}
	for name, payload := range cases {
		if _, err := ParsePage(seriesMarkup("", payload)); err == nil {
			t.Errorf("%s: want error", name)
		}
	}
}

// An item list that is present but empty parses fine; the pipeline turns
// it into the no-entries terminal path instead.
func TestParsePage_EmptyItemList(t *testing.T) {
	payload := `{"nvapi": [{"body": {"data": {"totalCount": 0, "detail": {"title": "x"}, "items": []}}}]}`
	page, err := ParsePage(seriesMarkup("", payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Data.Items) != 0 {
		t.Errorf("items = %d, want 0", len(page.Data.Items))
	}
}
