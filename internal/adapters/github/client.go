// Package github fetches contribution calendars from the GitHub GraphQL API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mna11/ReadMe3D/internal/core/domain"
)

const (
	DefaultEndpoint = "https://api.github.com/graphql"
	userAgent       = "ReadMe3D-contribution-city"
)

var ErrMissingToken = errors.New("github token is required")

const calendarQuery = `query($userName: String!) {
  user(login: $userName) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
            weekday
          }
        }
      }
    }
  }
}`

type Client struct {
	endpoint string
	token    string
	h        *http.Client
	now      func() time.Time
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = endpoint
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.h = h
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.h.Timeout = d
		}
	}
}

func New(token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	c := &Client{
		endpoint: DefaultEndpoint,
		token:    token,
		h:        &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type contributionDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
	Weekday           int    `json:"weekday"`
}

type graphqlResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int `json:"totalContributions"`
					Weeks              []struct {
						ContributionDays []contributionDay `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"errors"`
}

// FetchCalendar returns the last year of contributions, oldest day first.
// Transport failures and 5xx answers wrap domain.ErrSourceUnavailable.
func (c *Client) FetchCalendar(ctx context.Context, username string) (*domain.Calendar, error) {
	body, err := json.Marshal(graphqlRequest{
		Query:     calendarQuery,
		Variables: map[string]any{"userName": username},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.h.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("github graphql returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
		}
		return nil, err
	}

	var payload graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("github graphql: decode response: %w", err)
	}

	for _, e := range payload.Errors {
		if e.Type == "NOT_FOUND" {
			return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
		}
	}
	if len(payload.Errors) > 0 {
		msgs := make([]string, len(payload.Errors))
		for i, e := range payload.Errors {
			msgs[i] = e.Message
		}
		return nil, fmt.Errorf("github graphql: %s", strings.Join(msgs, "; "))
	}
	if payload.Data.User == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, username)
	}

	calendar := payload.Data.User.ContributionsCollection.ContributionCalendar
	cal := &domain.Calendar{
		Username:  username,
		Total:     calendar.TotalContributions,
		FetchedAt: c.now().UTC(),
	}
	for _, w := range calendar.Weeks {
		for _, d := range w.ContributionDays {
			date, err := time.Parse(domain.DateLayout, d.Date)
			if err != nil {
				return nil, fmt.Errorf("%w: date %q", domain.ErrMalformedDay, d.Date)
			}
			cal.Days = append(cal.Days, domain.ActivityDay{
				Date:    date,
				Weekday: d.Weekday,
				Count:   d.ContributionCount,
			})
		}
	}
	return cal, nil
}
