// Package fetcher retrieves a scrap's JSON blob from the Zenn API and
// deserializes it into the entities model. One request per call: no retries,
// no caching.
package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"scrapmd/entities"
)

// BaseURL is the platform endpoint scraps are fetched from.
const BaseURL = "https://zenn.dev"

// ErrMalformedResponse is returned when the response body does not match the
// expected blob shape.
var ErrMalformedResponse = errors.New("malformed scrap response")

// StatusError reports a non-success HTTP response.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch scrap: HTTP %d", e.Status)
}

// Client fetches scraps over HTTP.
type Client struct {
	http *resty.Client
}

// NewClient builds a client against baseURL. Pass BaseURL outside of tests.
func NewClient(baseURL string) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(time.Second * 30)
	client.SetHeader("user-agent", "scrapmd (+https://zenn.dev)")
	return &Client{http: client}
}

// Fetch retrieves and deserializes the scrap identified by slug. cookie is a
// ready-to-send Cookie header value; empty means anonymous access.
func (c *Client) Fetch(ctx context.Context, slug, cookie string) (*entities.Scrap, error) {
	req := c.http.R().SetContext(ctx)
	if cookie != "" {
		req.SetHeader("Cookie", cookie)
	}
	res, err := req.Get(fmt.Sprintf("/api/scraps/%s/blob.json", slug))
	if err != nil {
		return nil, fmt.Errorf("failed to request scrap: %w", err)
	}
	if !res.IsSuccess() {
		return nil, &StatusError{Status: res.StatusCode()}
	}
	return decodeScrap(res.Body())
}

// Wire shapes use pointer fields so missing required keys are told apart
// from empty values. Unknown fields are ignored for forward compatibility.
type scrapPayload struct {
	Title    *string          `json:"title"`
	Comments []commentPayload `json:"comments"`
}

type commentPayload struct {
	Author    *string          `json:"author"`
	CreatedAt *string          `json:"created_at"`
	Body      *string          `json:"body_markdown"`
	Children  []commentPayload `json:"children"`
}

func decodeScrap(body []byte) (*entities.Scrap, error) {
	var payload scrapPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if payload.Title == nil || payload.Comments == nil {
		return nil, fmt.Errorf("%w: missing title or comments", ErrMalformedResponse)
	}
	comments, err := buildComments(payload.Comments)
	if err != nil {
		return nil, err
	}
	return &entities.Scrap{Title: *payload.Title, Comments: comments}, nil
}

func buildComments(payloads []commentPayload) ([]entities.Comment, error) {
	comments := make([]entities.Comment, 0, len(payloads))
	for _, p := range payloads {
		if p.Author == nil || p.CreatedAt == nil || p.Body == nil {
			return nil, fmt.Errorf("%w: comment is missing a required field", ErrMalformedResponse)
		}
		children, err := buildComments(p.Children)
		if err != nil {
			return nil, err
		}
		comments = append(comments, entities.Comment{
			Author:    *p.Author,
			CreatedAt: *p.CreatedAt,
			Body:      *p.Body,
			Children:  children,
		})
	}
	return comments, nil
}
