package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	sdk "github.com/bitwarden/sdk-go"
)

const (
	bwsLoginAttempts   = 5
	bwsInitialBackoff  = 500 * time.Millisecond
	bwsAccessTokenEnv  = "BWS_ACCESS_TOKEN"
	bwsOrganizationEnv = "BWS_ORGANIZATION_ID"
)

// SecretsClient wraps an authenticated Bitwarden Secrets Manager client.
type SecretsClient struct {
	bw    sdk.BitwardenClientInterface
	orgID string
}

// BWSConfigured reports whether the environment asks for Bitwarden secrets.
func BWSConfigured() bool {
	return strings.TrimSpace(os.Getenv(bwsAccessTokenEnv)) != ""
}

// NewSecretsClient logs in with BWS_ACCESS_TOKEN, retrying on rate limits.
func NewSecretsClient() (*SecretsClient, error) {
	accessToken := strings.TrimSpace(os.Getenv(bwsAccessTokenEnv))
	if accessToken == "" {
		return nil, fmt.Errorf("%s env var is missing or empty", bwsAccessTokenEnv)
	}
	orgID := strings.TrimSpace(os.Getenv(bwsOrganizationEnv))
	if orgID == "" {
		return nil, fmt.Errorf("%s env var is missing or empty", bwsOrganizationEnv)
	}

	bw, err := sdk.NewBitwardenClient(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("initialising Bitwarden SDK client: %w", err)
	}

	backoff := bwsInitialBackoff
	for attempt := 1; attempt <= bwsLoginAttempts; attempt++ {
		err = bw.AccessTokenLogin(accessToken, nil)
		if err == nil {
			return &SecretsClient{bw: bw, orgID: orgID}, nil
		}
		// sdk-go has no typed status errors; 429 shows up only in the message.
		if !strings.Contains(err.Error(), "429") && !strings.Contains(err.Error(), "Too Many Requests") {
			bw.Close()
			return nil, fmt.Errorf("bitwarden access-token login failed: %w", err)
		}
		if attempt == bwsLoginAttempts {
			break
		}
		time.Sleep(backoff)
		backoff *= 2
	}
	bw.Close()
	return nil, fmt.Errorf("bitwarden access-token login failed after %d attempts: %w", bwsLoginAttempts, err)
}

func (c *SecretsClient) Close() {
	if c != nil && c.bw != nil {
		c.bw.Close()
	}
}

// ProjectSecrets returns every key/value secret in the named project.
func (c *SecretsClient) ProjectSecrets(projectName string) (map[string]string, error) {
	if strings.TrimSpace(projectName) == "" {
		return nil, errors.New("projectName must not be empty")
	}

	projects, err := c.bw.Projects().List(c.orgID)
	if err != nil {
		return nil, fmt.Errorf("listing Bitwarden projects: %w", err)
	}
	var projectID string
	for _, p := range projects.Data {
		if strings.EqualFold(p.Name, projectName) {
			projectID = p.ID
			break
		}
	}
	if projectID == "" {
		return nil, fmt.Errorf("project %q not found", projectName)
	}

	synced, err := c.bw.Secrets().Sync(c.orgID, nil)
	if err != nil {
		return nil, fmt.Errorf("syncing Bitwarden secrets: %w", err)
	}
	out := make(map[string]string)
	for _, s := range synced.Secrets {
		if s.ProjectID != nil && *s.ProjectID == projectID {
			out[s.Key] = s.Value
		}
	}
	return out, nil
}
