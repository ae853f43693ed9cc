package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/ground-setup/internal/domain/fixture"
	"github.com/riskibarqy/ground-setup/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

// FixturePage is one page of the paginated fixture source. An empty
// NextCursor means there are no further pages.
type FixturePage struct {
	Fixtures   []fixture.Record
	NextCursor string
}

type FixturePageSource interface {
	FetchFixturePage(ctx context.Context, cursor string) (FixturePage, error)
}

// FixtureFetcher walks the fixture source page by page until the horizon.
type FixtureFetcher struct {
	source FixturePageSource
	logger *logging.Logger
	now    func() time.Time
}

func NewFixtureFetcher(source FixturePageSource, logger *logging.Logger) *FixtureFetcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureFetcher{
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// Fetch returns every fixture dated within horizonDays of now.
//
// Paging continues while the last page had records, carried a cursor, and
// the furthest date seen on any page is still inside the horizon. Records
// past the horizon are dropped without ending the walk. Records without a
// parseable date are kept and never move the furthest date.
func (f *FixtureFetcher) Fetch(ctx context.Context, horizonDays int) ([]fixture.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureFetcher.Fetch")
	defer span.End()

	if horizonDays <= 0 {
		return nil, fmt.Errorf("%w: horizon days must be positive, got %d", ErrInvalidInput, horizonDays)
	}

	now := f.now()
	limit := now.AddDate(0, 0, horizonDays)
	latest := now

	var (
		out     []fixture.Record
		cursor  string
		dropped int
		pages   int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page, err := f.source.FetchFixturePage(ctx, cursor)
		pages++
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %w", ErrTransport, pages, err)
		}

		for _, record := range page.Fixtures {
			if record.HasDate() {
				if record.Date.After(latest) {
					latest = record.Date
				}
				if record.Date.After(limit) {
					dropped++
					continue
				}
			}
			out = append(out, record)
		}

		if len(page.Fixtures) == 0 || page.NextCursor == "" || !latest.Before(limit) {
			break
		}
		if page.NextCursor == cursor {
			f.logger.WarnContext(ctx, "fixture source repeated cursor, stopping", "cursor", cursor, "page", pages)
			break
		}
		cursor = page.NextCursor
	}

	span.SetAttributes(
		attribute.Int("fixtures.pages", pages),
		attribute.Int("fixtures.kept", len(out)),
		attribute.Int("fixtures.dropped", dropped),
	)
	f.logger.InfoContext(ctx, "fixtures fetched",
		"pages", pages,
		"kept", len(out),
		"dropped_past_horizon", dropped,
		"horizon", limit.Format(time.RFC3339),
	)

	if len(out) == 0 {
		return nil, ErrEmptyResult
	}
	return out, nil
}
