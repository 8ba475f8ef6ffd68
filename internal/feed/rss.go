package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"serirss/pkg/models"
)

// RSS 2.0 document structure. Only what this service emits is modeled;
// rendering is one-way (no unmarshal path).

type rssDoc struct {
	XMLName   xml.Name   `xml:"rss"`
	Version   string     `xml:"version,attr"`
	ContentNS string     `xml:"xmlns:content,attr"`
	Channel   rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link,omitempty"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string      `xml:"title"`
	Link        string      `xml:"link"`
	GUID        rssGUID     `xml:"guid"`
	Description string      `xml:"description,omitempty"`
	Content     *rssContent
	Image       string      `xml:"image,omitempty"`
	PubDate     string      `xml:"pubDate,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// rssContent carries its element name in XMLName so the marshaller emits
// a literal <content:encoded> under the xmlns:content declaration.
type rssContent struct {
	XMLName xml.Name `xml:"content:encoded"`
	Value   string   `xml:",cdata"`
}

// RenderRSS serializes a built feed to an RSS 2.0 document.
func RenderRSS(f *models.Feed) ([]byte, error) {
	doc := rssDoc{
		Version:   "2.0",
		ContentNS: "http://purl.org/rss/1.0/modules/content/",
		Channel: rssChannel{
			Title:       f.Title,
			Link:        f.Link,
			Description: f.Description,
			Items:       make([]rssItem, 0, len(f.Entries)),
		},
	}

	for _, e := range f.Entries {
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       e.Title,
			Link:        e.Link,
			GUID:        rssGUID{IsPermaLink: true, Value: e.Link},
			Description: e.Description,
			Content:     &rssContent{Value: e.Link},
			Image:       e.Image,
			PubDate:     pubDate(e.Date),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("feed: render rss: %w", err)
	}
	return append([]byte(xml.Header), body...), nil
}

// pubDate converts an upstream ISO-8601 timestamp to the RFC 1123 form
// feed readers expect. An unparsable timestamp passes through as-is
// rather than dropping the item.
func pubDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Format(time.RFC1123Z)
}
