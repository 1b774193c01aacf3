package outbreakapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, needsAuth bool, out any) error {
	auth, err := c.authorization(ctx, needsAuth)
	if err != nil {
		return err
	}

	req := c.http.R().SetContext(ctx)
	if auth != "" {
		req.SetHeader("Authorization", auth)
	}
	res, err := req.
		SetQueryParamsFromValues(params).
		Get("/" + endpoint)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	err = checkResponse(res)
	if err != nil {
		return err
	}

	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body any, out any) error {
	auth, err := c.authorization(ctx, true)
	if err != nil {
		return err
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", auth).
		SetHeader("content-type", "application/json").
		SetBody(body).
		Post("/" + endpoint)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", endpoint, err)
	}
	err = checkResponse(res)
	if err != nil {
		return err
	}

	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return fmt.Errorf("unmarshal json: %w", err)
	}
	return nil
}

// Query performs a GET against an endpoint and decodes the whole response
// body into T.
func Query[T any](ctx context.Context, c *Client, endpoint string, params url.Values, needsAuth bool) (T, error) {
	var out T
	err := c.get(ctx, endpoint, params, needsAuth, &out)
	return out, err
}

type resultsEnvelope[T any] struct {
	Results T `json:"results"`
}

// Results decodes the `results` field of a response.
func Results[T any](ctx context.Context, c *Client, endpoint string, params url.Values, needsAuth bool) (T, error) {
	env, err := Query[resultsEnvelope[T]](ctx, c, endpoint, params, needsAuth)
	return env.Results, err
}

type hitsEnvelope[T any] struct {
	Hits []T `json:"hits"`
}

// Hits decodes the `hits` field of a response.
func Hits[T any](ctx context.Context, c *Client, endpoint string, params url.Values, needsAuth bool) ([]T, error) {
	env, err := Query[hitsEnvelope[T]](ctx, c, endpoint, params, needsAuth)
	return env.Hits, err
}

type scrollPage struct {
	ScrollID string            `json:"_scroll_id"`
	Hits     []json.RawMessage `json:"hits"`
	// present on the terminal page of a scroll
	Success *bool `json:"success"`
}

// ScrollHits pages through an elasticsearch scroll (fetch_all=true),
// concatenating the hits of every page.
func ScrollHits[T any](ctx context.Context, c *Client, endpoint string, params url.Values, needsAuth bool) ([]T, error) {
	ctx, span := tracer.Start(ctx, "ScrollHits")
	defer span.End()

	next := url.Values{}
	for k, v := range params {
		next[k] = v
	}
	next.Set("fetch_all", "true")

	var rows []T
	for page := 0; ; page++ {
		var env scrollPage
		err := c.get(ctx, endpoint, next, needsAuth, &env)
		if err != nil {
			return nil, err
		}
		for _, raw := range env.Hits {
			var row T
			err := json.Unmarshal(raw, &row)
			if err != nil {
				return nil, fmt.Errorf("unmarshal hit: %w", err)
			}
			rows = append(rows, row)
		}

		if env.Success != nil || env.ScrollID == "" || len(env.Hits) == 0 {
			return rows, nil
		}
		next = url.Values{
			"scroll_id": {env.ScrollID},
			"fetch_all": {"True"},
			"page":      {strconv.Itoa(page)},
		}
	}
}

type multiSearchRequest struct {
	Q      []string `json:"q"`
	Scopes string   `json:"scopes"`
}

type notFoundMarker struct {
	NotFound bool `json:"notfound"`
}

const multiSearchBatch = 1000

// MultiSearch POSTs a batched term lookup scoped to a single field,
// dropping rows the server could not match.
func MultiSearch[T any](ctx context.Context, c *Client, endpoint, scopes string, terms []string) ([]T, error) {
	ctx, span := tracer.Start(ctx, "MultiSearch")
	defer span.End()

	var batches [][]string
	for len(terms) > multiSearchBatch {
		batches = append(batches, terms[:multiSearchBatch])
		terms = terms[multiSearchBatch:]
	}
	if len(terms) > 0 {
		batches = append(batches, terms)
	}

	fetched := make([][]T, len(batches))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(4)
	for i, batch := range batches {
		i, batch := i, batch
		group.Go(func() error {
			var raw []json.RawMessage
			err := c.post(ctx, endpoint, multiSearchRequest{
				Q:      batch,
				Scopes: scopes,
			}, &raw)
			if err != nil {
				return err
			}

			var rows []T
			for _, msg := range raw {
				var marker notFoundMarker
				err := json.Unmarshal(msg, &marker)
				if err == nil && marker.NotFound {
					continue
				}
				var row T
				err = json.Unmarshal(msg, &row)
				if err != nil {
					return fmt.Errorf("unmarshal row: %w", err)
				}
				rows = append(rows, row)
			}
			fetched[i] = rows
			return nil
		})
	}
	err := group.Wait()
	if err != nil {
		return nil, err
	}

	var rows []T
	for _, batch := range fetched {
		rows = append(rows, batch...)
	}
	return rows, nil
}
