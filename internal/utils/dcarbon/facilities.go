package dcarbon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

// ListFacilities fetches one page. query is sent as-is.
func (c *Client) ListFacilities(ctx context.Context, userID string, query url.Values) (*models.FacilityPage, error) {
	var page models.FacilityPage
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathUserFacilities, url.PathEscape(userID)), query, nil, &page); err != nil {
		return nil, fmt.Errorf("ListFacilities error: %w", err)
	}
	return &page, nil
}

func (c *Client) GetFacility(ctx context.Context, facilityID string) (*models.Facility, error) {
	var f models.Facility
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathFacility, url.PathEscape(facilityID)), nil, nil, &f); err != nil {
		return nil, fmt.Errorf("GetFacility error: %w", err)
	}
	return &f, nil
}

// CreateFacility posts payload to the kind-specific creation endpoint.
func (c *Client) CreateFacility(ctx context.Context, userID string, kind FacilityKind, payload any) (*models.Facility, error) {
	var f models.Facility
	p := fmt.Sprintf(pathCreateFacility, kind, url.PathEscape(userID))
	if err := c.doJSON(ctx, http.MethodPost, p, nil, payload, &f); err != nil {
		return nil, fmt.Errorf("CreateFacility error: %w", err)
	}
	return &f, nil
}

func (c *Client) UpdateFacility(ctx context.Context, facilityID string, patch map[string]any) (*models.Facility, error) {
	var f models.Facility
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf(pathUpdateFacility, url.PathEscape(facilityID)), nil, patch, &f); err != nil {
		return nil, fmt.Errorf("UpdateFacility error: %w", err)
	}
	return &f, nil
}
