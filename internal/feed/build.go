package feed

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"serirss/internal/nico"
	"serirss/pkg/models"
)

const (
	// pageSize is the number of videos niconico lists per series page.
	pageSize = 100
	// maxEntries caps the emitted feed.
	maxEntries = 20

	watchURLPrefix = "https://www.nicovideo.jp/watch/"
)

// ErrNoEntries marks a series that resolved to zero videos. It is the
// one terminal condition answered with 404 instead of 500.
var ErrNoEntries = errors.New("feed: no entries resolved for series")

// Fetcher is the upstream surface the builder needs. *nico.Client
// satisfies it; tests substitute a stub.
type Fetcher interface {
	FetchSeries(ctx context.Context, seriesID string) ([]byte, error)
	FetchPage(ctx context.Context, canonicalURL string, page int) ([]byte, error)
}

// Builder runs the whole per-request pipeline: fetch, parse, optional
// last-page refetch, map. It holds no state across requests.
type Builder struct {
	Fetcher Fetcher
	Logger  *zap.Logger
	Tracer  trace.Tracer
}

func NewBuilder(f Fetcher, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		Fetcher: f,
		Logger:  logger,
		Tracer:  otel.Tracer("serirss/feed"),
	}
}

// Build produces the feed for one series: newest ≤ 20 videos, newest-first.
func (b *Builder) Build(ctx context.Context, seriesID string) (*models.Feed, error) {
	ctx, span := b.Tracer.Start(ctx, "fetch-series",
		trace.WithAttributes(attribute.String("series.id", seriesID)))
	markup, err := b.Fetcher.FetchSeries(ctx, seriesID)
	span.End()
	if err != nil {
		return nil, fmt.Errorf("feed: fetch series %s: %w", seriesID, err)
	}

	page, err := b.parse(ctx, markup)
	if err != nil {
		return nil, err
	}

	// A series longer than one page lists its newest videos on the last
	// page; refetch it and discard the first page's data entirely.
	if page.Data.TotalCount > pageSize {
		if page.CanonicalURL == "" {
			return nil, errors.New("feed: page has no canonical URL, cannot address last page")
		}
		last := lastPage(page.Data.TotalCount)
		b.Logger.Info("series spans multiple pages, refetching last",
			zap.Int("total_count", page.Data.TotalCount),
			zap.Int("page", last))

		ctx, span := b.Tracer.Start(ctx, "fetch-last-page",
			trace.WithAttributes(attribute.Int("page", last)))
		markup, err = b.Fetcher.FetchPage(ctx, page.CanonicalURL, last)
		span.End()
		if err != nil {
			return nil, fmt.Errorf("feed: fetch page %d: %w", last, err)
		}

		page, err = b.parse(ctx, markup)
		if err != nil {
			return nil, err
		}
	}

	_, span = b.Tracer.Start(ctx, "build-feed")
	defer span.End()

	entries := mapEntries(page.Data.Items)
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	b.Logger.Info("mapped series entries",
		zap.Int("total_count", page.Data.TotalCount),
		zap.Int("entries", len(entries)))

	description := page.Data.Detail.Description
	if description == "" {
		description = page.Data.Detail.Title
	}
	return &models.Feed{
		Title:       page.Data.Detail.Title,
		Description: description,
		Link:        page.CanonicalURL,
		Entries:     entries,
	}, nil
}

func (b *Builder) parse(ctx context.Context, markup []byte) (nico.Page, error) {
	_, span := b.Tracer.Start(ctx, "parse-page")
	defer span.End()
	page, err := nico.ParsePage(markup)
	if err != nil {
		return nico.Page{}, fmt.Errorf("feed: %w", err)
	}
	return page, nil
}

// lastPage is the 1-based index of the final series page.
func lastPage(totalCount int) int {
	n := totalCount / pageSize
	if totalCount%pageSize != 0 {
		n++
	}
	return n
}

// mapEntries reverses the within-page oldest-first ordering, truncates to
// the newest entries, and normalizes each item.
func mapEntries(items []nico.Item) []models.Entry {
	entries := make([]models.Entry, 0, min(len(items), maxEntries))
	for i := len(items) - 1; i >= 0 && len(entries) < maxEntries; i-- {
		v := items[i].Video
		entries = append(entries, models.Entry{
			Link:        watchURLPrefix + v.ID,
			Title:       v.Title,
			Image:       v.Thumbnail.ListingURL,
			Date:        v.RegisteredAt,
			Description: v.ShortDescription,
		})
	}
	return entries
}
