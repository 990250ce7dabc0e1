package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mna11/ReadMe3D/internal/core/city"
	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/frame"
	"github.com/mna11/ReadMe3D/internal/core/svg"
)

type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

type Image struct {
	Format      Format
	ContentType string
	Body        []byte
	Window      []domain.ActivityDay
	Totals      domain.Totals
}

type PNGEncoder interface {
	Bytes(doc *frame.Document) ([]byte, error)
}

type RenderRecorder interface {
	ObserveRender(format string, err error, took time.Duration)
}

type CacheInvalidator interface {
	Invalidate(ctx context.Context, username string) error
}

type CityOptions struct {
	// PadMissing renders short series with leading zero days instead of failing.
	PadMissing bool
	Title      string

	PNG         PNGEncoder
	Recorder    RenderRecorder
	Invalidator CacheInvalidator
}

type CityService struct {
	source   domain.ActivitySource
	store    domain.SnapshotRepository
	renderer *city.Renderer
	opts     CityOptions
}

func NewCityService(source domain.ActivitySource, store domain.SnapshotRepository, renderer *city.Renderer, opts CityOptions) *CityService {
	return &CityService{
		source:   source,
		store:    store,
		renderer: renderer,
		opts:     opts,
	}
}

// Render fetches the calendar of username and draws its trailing window.
func (s *CityService) Render(ctx context.Context, username string, format Format) (*Image, error) {
	login, err := domain.NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	cal, err := s.source.FetchCalendar(ctx, login)
	if err != nil {
		s.record(format, err, 0)
		return nil, err
	}

	return s.RenderSeries(cal, format)
}

// RenderSeries draws a caller supplied calendar.
func (s *CityService) RenderSeries(cal *domain.Calendar, format Format) (img *Image, err error) {
	start := time.Now()
	defer func() { s.record(format, err, time.Since(start)) }()

	if cal == nil {
		return nil, domain.ErrMissingInput
	}

	window, err := s.window(cal.Days)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateWindow(window); err != nil {
		return nil, err
	}

	totals := domain.TotalsFor(cal.Total, window)
	doc := s.renderer.Document(window, totals, s.opts.Title)

	img = &Image{Format: format, Window: window, Totals: totals}
	switch format {
	case FormatSVG, "":
		img.Format = FormatSVG
		img.ContentType = svg.ContentType
		img.Body = []byte(svg.Encode(doc))
	case FormatPNG:
		if s.opts.PNG == nil {
			return nil, fmt.Errorf("%w: png export is disabled", ErrUnsupportedFormat)
		}
		body, err := s.opts.PNG.Bytes(doc)
		if err != nil {
			return nil, fmt.Errorf("render png: %w", err)
		}
		img.ContentType = "image/png"
		img.Body = body
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	log.Printf("[RENDER] %s city for %q (%d days, total %d, today %d)", img.Format, cal.Username, len(window), totals.Total, totals.Today)
	return img, nil
}

// Ingest stores a pushed calendar and drops any cached copy.
func (s *CityService) Ingest(ctx context.Context, cal *domain.Calendar) error {
	if cal == nil {
		return domain.ErrMissingInput
	}
	login, err := domain.NormalizeUsername(cal.Username)
	if err != nil {
		return err
	}
	cal.Username = login
	if err := cal.Validate(); err != nil {
		return err
	}
	if cal.FetchedAt.IsZero() {
		cal.FetchedAt = time.Now().UTC()
	}

	if err := s.store.Save(ctx, cal); err != nil {
		return err
	}

	if s.opts.Invalidator != nil {
		if err := s.opts.Invalidator.Invalidate(ctx, login); err != nil {
			log.Printf("[CACHE] Stale calendar for %s may be served: %v", login, err)
		}
	}
	return nil
}

func (s *CityService) WindowSize() int {
	return s.renderer.WindowSize()
}

func (s *CityService) window(days []domain.ActivityDay) ([]domain.ActivityDay, error) {
	if s.opts.PadMissing {
		return domain.PadWindow(days, s.renderer.WindowSize())
	}
	return domain.Window(days, s.renderer.WindowSize())
}

func (s *CityService) record(format Format, err error, took time.Duration) {
	if s.opts.Recorder != nil {
		s.opts.Recorder.ObserveRender(string(format), err, took)
	}
}
