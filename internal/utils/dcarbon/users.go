package dcarbon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

// Register creates a user. referralCode, when set, is sent as a query parameter.
func (c *Client) Register(ctx context.Context, req RegisterRequest, referralCode string) (*models.LoginResult, error) {
	var q url.Values
	if referralCode != "" {
		q = url.Values{"referralCode": {referralCode}}
	}
	var res models.LoginResult
	if err := c.doJSON(ctx, http.MethodPost, pathRegister, q, req, &res); err != nil {
		return nil, fmt.Errorf("Register error: %w", err)
	}
	return &res, nil
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (*models.LoginResult, error) {
	var res models.LoginResult
	if err := c.doJSON(ctx, http.MethodPost, pathLogin, nil, req, &res); err != nil {
		return nil, fmt.Errorf("Login error: %w", err)
	}
	return &res, nil
}

func (c *Client) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var u models.User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathUser, url.PathEscape(userID)), nil, nil, &u); err != nil {
		return nil, fmt.Errorf("GetUser error: %w", err)
	}
	return &u, nil
}

func (c *Client) UpdateCommercialDetails(ctx context.Context, userID string, d CommercialDetails) error {
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf(pathCommercialDetails, url.PathEscape(userID)), nil, d, nil); err != nil {
		return fmt.Errorf("UpdateCommercialDetails error: %w", err)
	}
	return nil
}

func (c *Client) UpdateOwners(ctx context.Context, userID string, owners []models.Owner) error {
	body := map[string]any{"owners": owners}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf(pathCommercialOwners, url.PathEscape(userID)), nil, body, nil); err != nil {
		return fmt.Errorf("UpdateOwners error: %w", err)
	}
	return nil
}

func (c *Client) UpdatePartnerDetails(ctx context.Context, userID string, d PartnerDetails) error {
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf(pathPartnerDetails, url.PathEscape(userID)), nil, d, nil); err != nil {
		return fmt.Errorf("UpdatePartnerDetails error: %w", err)
	}
	return nil
}

func (c *Client) UpdateFinancialInfo(ctx context.Context, userID string, info models.FinancialInfo) (*models.FinancialInfo, error) {
	var out models.FinancialInfo
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf(pathFinancialInfo, url.PathEscape(userID)), nil, info, &out); err != nil {
		return nil, fmt.Errorf("UpdateFinancialInfo error: %w", err)
	}
	return &out, nil
}

// GetFinancialInfo returns (nil, nil) when the user has none yet.
func (c *Client) GetFinancialInfo(ctx context.Context, userID string) (*models.FinancialInfo, error) {
	var out models.FinancialInfo
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathFinancialInfo, url.PathEscape(userID)), nil, nil, &out); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetFinancialInfo error: %w", err)
	}
	return &out, nil
}

func (c *Client) UploadFinancialAgreement(ctx context.Context, userID string, f File) (*UploadResult, error) {
	var out UploadResult
	err := c.doMultipart(ctx, http.MethodPut, fmt.Sprintf(pathFinancialAgreement, url.PathEscape(userID)),
		formFieldFinanceAgreement, f, nil, &out)
	if err != nil {
		return nil, fmt.Errorf("UploadFinancialAgreement error: %w", err)
	}
	return &out, nil
}

func (c *Client) ListInstallers(ctx context.Context) ([]Installer, error) {
	var out []Installer
	if err := c.doJSON(ctx, http.MethodGet, pathInstallers, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("ListInstallers error: %w", err)
	}
	return out, nil
}

func (c *Client) ListFinanceTypes(ctx context.Context) ([]FinanceType, error) {
	var out []FinanceType
	if err := c.doJSON(ctx, http.MethodGet, pathFinanceTypes, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("ListFinanceTypes error: %w", err)
	}
	return out, nil
}
