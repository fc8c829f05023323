package dcarbon

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/models"
)

func (c *Client) AcceptAgreementTerms(ctx context.Context, userID string, terms AgreementTerms) (*models.Agreement, error) {
	var out models.Agreement
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf(pathAcceptAgreementTerms, url.PathEscape(userID)), nil, terms, &out); err != nil {
		return nil, fmt.Errorf("AcceptAgreementTerms error: %w", err)
	}
	return &out, nil
}

// UploadSignature attaches a signature image to the user's agreement.
func (c *Client) UploadSignature(ctx context.Context, userID string, f File) (*models.Agreement, error) {
	var out models.Agreement
	err := c.doMultipart(ctx, http.MethodPut, fmt.Sprintf(pathUpdateAgreement, url.PathEscape(userID)),
		formFieldSignature, f, nil, &out)
	if err != nil {
		return nil, fmt.Errorf("UploadSignature error: %w", err)
	}
	return &out, nil
}

// GetAgreement returns (nil, nil) when the user has not started one.
func (c *Client) GetAgreement(ctx context.Context, userID string) (*models.Agreement, error) {
	var out models.Agreement
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf(pathAgreement, url.PathEscape(userID)), nil, nil, &out); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("GetAgreement error: %w", err)
	}
	return &out, nil
}
