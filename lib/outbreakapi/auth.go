package outbreakapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// AuthSession is a pending device authentication, the user opens URL in a
// browser and confirms their GISAID credentials there while the client
// polls for the outcome.
type AuthSession struct {
	Token string `json:"authn_token"`
	URL   string `json:"authn_url"`
}

// StartAuthentication requests a new device authentication session.
func (c *Client) StartAuthentication(ctx context.Context) (AuthSession, error) {
	ctx, span := tracer.Start(ctx, "client:StartAuthentication")
	defer span.End()

	res, err := c.http.R().
		SetContext(ctx).
		Get("/genomics/get-auth-token")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to request auth token")
		return AuthSession{}, err
	}
	err = checkResponse(res)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return AuthSession{}, err
	}

	var session AuthSession
	err = json.Unmarshal(res.Body(), &session)
	if err != nil {
		span.SetStatus(codes.Error, "failed to parse auth session")
		return AuthSession{}, fmt.Errorf("unmarshal json: %w", err)
	}
	if session.Token == "" || session.URL == "" {
		err := fmt.Errorf("server returned an incomplete auth session")
		span.SetStatus(codes.Error, err.Error())
		return AuthSession{}, err
	}
	return session, nil
}

type authStatus struct {
	Authenticated bool   `json:"authenticated"`
	Token         string `json:"token"`
}

// WaitForAuthentication polls the session until the user confirms it in
// their browser, returning the bearer token to use on subsequent requests.
// Cancel the context to give up.
func (c *Client) WaitForAuthentication(ctx context.Context, session AuthSession, interval time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "client:WaitForAuthentication")
	defer span.End()

	if interval <= 0 {
		interval = time.Second * 5
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			span.SetStatus(codes.Error, "cancelled")
			return "", ctx.Err()
		case <-ticker.C:
		}

		res, err := c.http.R().
			SetContext(ctx).
			SetHeader("Authorization", "Bearer "+session.Token).
			Get("/genomics/check-auth-token")
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to poll auth token")
			return "", err
		}
		err = checkResponse(res)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return "", err
		}

		var status authStatus
		err = json.Unmarshal(res.Body(), &status)
		if err != nil {
			return "", fmt.Errorf("unmarshal json: %w", err)
		}
		if status.Authenticated && status.Token != "" {
			return status.Token, nil
		}
	}
}
