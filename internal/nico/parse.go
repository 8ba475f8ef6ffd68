package nico

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// The series page embeds its initial application state as a JSON attribute
// on a well-known element, keyed by an internal API call log. Both names
// below are an undocumented upstream contract: when niconico changes its
// page internals, this file is the only one that needs updating.
const (
	initialDataSelector = "#js-initial-userpage-data"
	initialDataAttr     = "data-initial-data"
)

// SeriesData is the slice of initial state this service consumes
// (nvapi[0].body.data in the embedded payload).
type SeriesData struct {
	TotalCount int    `json:"totalCount"`
	Detail     Detail `json:"detail"`
	Items      []Item `json:"items"`
}

type Detail struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Item wraps one video of the series. Within a page, items are ordered
// oldest-to-newest as published by the source.
type Item struct {
	Video Video `json:"video"`
}

type Video struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	ShortDescription string    `json:"shortDescription"`
	RegisteredAt     string    `json:"registeredAt"`
	Thumbnail        Thumbnail `json:"thumbnail"`
}

type Thumbnail struct {
	ListingURL string `json:"listingUrl"`
}

// Page is the parsed form of one fetched series page.
type Page struct {
	// CanonicalURL is empty when the page carries no canonical link.
	// Only feed linkage and second-page construction consume it.
	CanonicalURL string
	Data         SeriesData
}

// ParseError reports markup that does not match the expected upstream
// page contract. It is fatal for the request.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nico: parse page: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("nico: parse page: %s", e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParsePage extracts the canonical URL and the embedded series state from
// series page markup. It is a pure function of its input.
func ParsePage(markup []byte) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		return Page{}, &ParseError{Reason: "read document", Err: err}
	}

	var page Page

	// A missing canonical link is tolerated; refetching a later page is
	// then impossible and fails downstream with a clear error.
	page.CanonicalURL, _ = doc.Find(`link[rel="canonical"]`).First().Attr("href")

	raw, ok := doc.Find(initialDataSelector).First().Attr(initialDataAttr)
	if !ok {
		return Page{}, &ParseError{Reason: "initial data element not found"}
	}

	// Pointers distinguish "field absent" (broken page contract, fatal)
	// from "present but empty" (a series with no videos, handled later).
	var initial struct {
		Nvapi []struct {
			Body struct {
				Data *struct {
					TotalCount int     `json:"totalCount"`
					Detail     Detail  `json:"detail"`
					Items      *[]Item `json:"items"`
				} `json:"data"`
			} `json:"body"`
		} `json:"nvapi"`
	}
	if err := json.Unmarshal([]byte(raw), &initial); err != nil {
		return Page{}, &ParseError{Reason: "decode initial data", Err: err}
	}
	if len(initial.Nvapi) == 0 {
		return Page{}, &ParseError{Reason: "initial data has no api entries"}
	}
	data := initial.Nvapi[0].Body.Data
	if data == nil {
		return Page{}, &ParseError{Reason: "api entry has no data"}
	}
	if data.Items == nil {
		return Page{}, &ParseError{Reason: "series data has no item list"}
	}

	page.Data = SeriesData{
		TotalCount: data.TotalCount,
		Detail:     data.Detail,
		Items:      *data.Items,
	}
	return page, nil
}
