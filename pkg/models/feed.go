package models

// Entry is the normalized, internal form of one series video.
//
// The upstream page payload is mapped into this structure first,
// then the RSS document is rendered from this representation.
type Entry struct {
	Link        string `json:"link"`                  // watch page URL derived from the video ID
	Title       string `json:"title"`                 // video title
	Image       string `json:"image,omitempty"`       // listing thumbnail URL (if any)
	Date        string `json:"date"`                  // registration timestamp as published upstream (ISO-8601)
	Description string `json:"description,omitempty"` // short description
}

// Feed is the channel-level view handed to the RSS renderer.
//
// Entries are newest-first and already capped; the renderer does not
// reorder or truncate.
type Feed struct {
	Title       string  `json:"title"`          // series title
	Description string  `json:"description"`    // series description, falls back to the title
	Link        string  `json:"link,omitempty"` // canonical series URL (empty when the page carried none)
	Entries     []Entry `json:"entries"`
}
