package carrier

import (
	"errors"
	"strings"
	"time"
)

// YalidineConfig holds configuration for the Yalidine delivery API
type YalidineConfig struct {
	// BaseURL is the API endpoint
	BaseURL string
	// APIID identifies the API credential pair
	APIID string
	// APIToken is the secret half of the credential pair
	APIToken string
	// FromWilayaID is the warehouse wilaya all parcels ship from
	FromWilayaID int
	// Timeout bounds every outbound HTTP call
	Timeout time.Duration
}

// YalidineProductionAPIURL is the production API endpoint
const YalidineProductionAPIURL = "https://api.yalidine.app/v1"

// Errors for Yalidine configuration
var (
	ErrYalidineConfigMissingAPIID    = errors.New("yalidine: API ID is required")
	ErrYalidineConfigMissingAPIToken = errors.New("yalidine: API token is required")
	ErrYalidineConfigBadFromWilaya   = errors.New("yalidine: origin wilaya is required")
)

// NewYalidineConfig creates a Yalidine configuration with production defaults
func NewYalidineConfig(apiID, apiToken string, fromWilayaID int) *YalidineConfig {
	return &YalidineConfig{
		BaseURL:      YalidineProductionAPIURL,
		APIID:        apiID,
		APIToken:     apiToken,
		FromWilayaID: fromWilayaID,
		Timeout:      10 * time.Second,
	}
}

// Validate checks that the configuration is complete
func (c *YalidineConfig) Validate() error {
	if strings.TrimSpace(c.APIID) == "" {
		return ErrYalidineConfigMissingAPIID
	}
	if strings.TrimSpace(c.APIToken) == "" {
		return ErrYalidineConfigMissingAPIToken
	}
	if c.FromWilayaID <= 0 {
		return ErrYalidineConfigBadFromWilaya
	}
	if c.BaseURL == "" {
		c.BaseURL = YalidineProductionAPIURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}
