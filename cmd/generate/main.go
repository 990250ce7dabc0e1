// Command generate writes the contribution city of one GitHub user to disk,
// ready to be committed next to a profile README.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mna11/ReadMe3D/internal/adapters/github"
	"github.com/mna11/ReadMe3D/internal/adapters/raster"
	"github.com/mna11/ReadMe3D/internal/adapters/repository"
	"github.com/mna11/ReadMe3D/internal/config"
	"github.com/mna11/ReadMe3D/internal/core/city"
	"github.com/mna11/ReadMe3D/internal/core/domain"
	"github.com/mna11/ReadMe3D/internal/core/frame"
	"github.com/mna11/ReadMe3D/internal/core/services"
)

var (
	errNoToken    = errors.New("GITHUB_TOKEN is required")
	errNoUsername = errors.New("USERNAME is required")
)

func main() {
	outDir := flag.String("out-dir", "profile-3d-contrib", "output directory")
	file := flag.String("file", "contribution-city.svg", "SVG file name")
	withPNG := flag.Bool("png", false, "also write a PNG next to the SVG")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	path, err := run(context.Background(), cfg, os.Getenv("USERNAME"), *outDir, *file, *withPNG)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	log.Printf("City written to %s", path)
}

func run(ctx context.Context, cfg *config.Config, username, outDir, file string, withPNG bool) (string, error) {
	if cfg.GitHub.Token == "" {
		return "", errNoToken
	}
	if strings.TrimSpace(username) == "" {
		return "", errNoUsername
	}

	opts := []github.Option{github.WithTimeout(cfg.GitHub.Timeout)}
	if cfg.GitHub.Endpoint != "" {
		opts = append(opts, github.WithEndpoint(cfg.GitHub.Endpoint))
	}
	gh, err := github.New(cfg.GitHub.Token, opts...)
	if err != nil {
		return "", err
	}
	return generate(ctx, gh, cfg.Render, username, outDir, file, withPNG)
}

func generate(ctx context.Context, source domain.ActivitySource, rc config.Render, username, outDir, file string, withPNG bool) (string, error) {
	renderer, err := city.NewRenderer(rc.SceneConfig(), frame.DefaultConfig(), city.SeededRand(rc.Seed))
	if err != nil {
		return "", err
	}

	svc := services.NewCityService(source, repository.NewInMemorySnapshotRepository(), renderer, services.CityOptions{
		PadMissing: rc.PadMissing,
		Title:      rc.Title,
		PNG:        raster.NewEncoder(rc.PNGScale),
	})

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	login, err := domain.NormalizeUsername(username)
	if err != nil {
		return "", err
	}
	cal, err := source.FetchCalendar(ctx, login)
	if err != nil {
		return "", err
	}

	img, err := svc.RenderSeries(cal, services.FormatSVG)
	if err != nil {
		return "", err
	}
	first, last := img.Window[0].Date, img.Window[len(img.Window)-1].Date
	log.Printf("[RENDER] %s: %s to %s, total %d, today %d", login,
		first.Format(domain.DateLayout), last.Format(domain.DateLayout), img.Totals.Total, img.Totals.Today)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, file)
	if err := os.WriteFile(path, img.Body, 0o644); err != nil {
		return "", err
	}

	if withPNG {
		png, err := svc.RenderSeries(cal, services.FormatPNG)
		if err != nil {
			return "", err
		}
		pngPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".png"
		if err := os.WriteFile(pngPath, png.Body, 0o644); err != nil {
			return "", err
		}
	}
	return path, nil
}
