package dcarbon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

func (c *Client) ListUtilityProviders(ctx context.Context) ([]models.UtilityProvider, error) {
	var out []models.UtilityProvider
	if err := c.doJSON(ctx, http.MethodGet, pathUtilityProviders, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("ListUtilityProviders error: %w", err)
	}
	return out, nil
}

func (c *Client) ListUtilityAccounts(ctx context.Context, userID string) ([]models.UtilityAccount, error) {
	var out []models.UtilityAccount
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathUtilityAccounts, url.PathEscape(userID)), nil, nil, &out); err != nil {
		return nil, fmt.Errorf("ListUtilityAccounts error: %w", err)
	}
	return out, nil
}

// ListMeters returns every meter of the account keyed by authEmail, unfiltered.
func (c *Client) ListMeters(ctx context.Context, userID, authEmail string) ([]models.Meter, error) {
	var out []models.Meter
	q := url.Values{"email": {authEmail}}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathUserMeters, url.PathEscape(userID)), q, nil, &out); err != nil {
		return nil, fmt.Errorf("ListMeters error: %w", err)
	}
	return out, nil
}

func (c *Client) InitiateUtilityAuth(ctx context.Context, userID string, req UtilityAuthRequest) (*UtilityAuthInitiation, error) {
	var out UtilityAuthInitiation
	if err := c.doJSON(ctx, http.MethodPost, fmt.Sprintf(pathInitiateUtilityAuth, url.PathEscape(userID)), nil, req, &out); err != nil {
		return nil, fmt.Errorf("InitiateUtilityAuth error: %w", err)
	}
	return &out, nil
}

func (c *Client) UtilityAuthStatus(ctx context.Context, userID, authEmail string) (*models.UtilityAuthStatus, error) {
	var out models.UtilityAuthStatus
	q := url.Values{"email": {authEmail}}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathUtilityAuthStatus, url.PathEscape(userID)), q, nil, &out); err != nil {
		return nil, fmt.Errorf("UtilityAuthStatus error: %w", err)
	}
	return &out, nil
}
