package carrier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/compucar/backend/internal/domain/shipping"
)

// Constants for the Yalidine API
const (
	// maxYalidineResponseSize limits the response body size to prevent memory exhaustion
	maxYalidineResponseSize = 10 * 1024 * 1024 // 10MB max response
	// includedWeightKg is the billable weight covered by the base fee;
	// every started kilogram above it is charged the oversize fee
	includedWeightKg = 5.0
)

// YalidineAdapter talks to the Yalidine delivery API. It implements
// both the rate lookup and the region directory the checkout flow
// depends on. Every call is bounded by the configured timeout; failures
// surface as errors and never block the caller beyond that.
type YalidineAdapter struct {
	config     *YalidineConfig
	httpClient *http.Client
}

// NewYalidineAdapter creates a new Yalidine adapter with the given configuration
func NewYalidineAdapter(config *YalidineConfig) (*YalidineAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &YalidineAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

var (
	_ shipping.RateService     = (*YalidineAdapter)(nil)
	_ shipping.RegionDirectory = (*YalidineAdapter)(nil)
)

// ---------------------------------------------------------------------------
// Region Directory
// ---------------------------------------------------------------------------

// GetWilayas lists every wilaya the carrier delivers to
func (a *YalidineAdapter) GetWilayas(ctx context.Context) ([]shipping.Wilaya, error) {
	var resp yalidineWilayasResponse
	if err := a.doRequest(ctx, http.MethodGet, "/wilayas/", nil, &resp); err != nil {
		return nil, err
	}

	wilayas := make([]shipping.Wilaya, 0, len(resp.Data))
	for _, w := range resp.Data {
		wilayas = append(wilayas, shipping.Wilaya{
			ID:          w.ID,
			Name:        w.Name,
			ZoneID:      w.ZoneID,
			Deliverable: w.IsDeliverable == 1,
		})
	}
	return wilayas, nil
}

// GetCommunes lists the communes of one wilaya
func (a *YalidineAdapter) GetCommunes(ctx context.Context, wilayaID int) ([]shipping.Commune, error) {
	if wilayaID <= 0 {
		return nil, fmt.Errorf("yalidine: invalid wilaya id %d", wilayaID)
	}

	query := url.Values{"wilaya_id": {strconv.Itoa(wilayaID)}}
	var resp yalidineCommunesResponse
	if err := a.doRequest(ctx, http.MethodGet, "/communes/?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	communes := make([]shipping.Commune, 0, len(resp.Data))
	for _, c := range resp.Data {
		communes = append(communes, shipping.Commune{
			ID:              c.ID,
			Name:            c.Name,
			WilayaID:        c.WilayaID,
			Deliverable:     c.IsDeliverable == 1,
			HasStopDesk:     c.HasStopDesk == 1,
			DeliveryTimeHrs: c.DeliveryTime,
		})
	}
	return communes, nil
}

// GetStopdesks lists the pickup centers of one wilaya
func (a *YalidineAdapter) GetStopdesks(ctx context.Context, wilayaID int) ([]shipping.Stopdesk, error) {
	if wilayaID <= 0 {
		return nil, fmt.Errorf("yalidine: invalid wilaya id %d", wilayaID)
	}

	query := url.Values{"wilaya_id": {strconv.Itoa(wilayaID)}}
	var resp yalidineCentersResponse
	if err := a.doRequest(ctx, http.MethodGet, "/centers/?"+query.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	desks := make([]shipping.Stopdesk, 0, len(resp.Data))
	for _, c := range resp.Data {
		desks = append(desks, shipping.Stopdesk{
			ID:       c.CenterID,
			Name:     c.Name,
			WilayaID: c.WilayaID,
			Commune:  c.CommuneName,
			Address:  c.Address,
		})
	}
	return desks, nil
}

// ---------------------------------------------------------------------------
// Rate Lookup
// ---------------------------------------------------------------------------

// CalculateShipping returns the live carrier price for a billable
// weight to a destination. Fees are fetched per wilaya pair and
// resolved to the destination commune (home delivery) or the desk rate
// (stopdesk pickup), plus an oversize surcharge for every started
// kilogram above the included weight.
func (a *YalidineAdapter) CalculateShipping(ctx context.Context, dest shipping.Destination, billableWeightKg float64) (decimal.Decimal, error) {
	if err := dest.Validate(); err != nil {
		return decimal.Zero, err
	}
	if billableWeightKg <= 0 {
		return decimal.Zero, fmt.Errorf("yalidine: invalid billable weight %v", billableWeightKg)
	}

	query := url.Values{
		"from_wilaya_id": {strconv.Itoa(a.config.FromWilayaID)},
		"to_wilaya_id":   {strconv.Itoa(dest.WilayaID)},
	}
	var resp yalidineFeesResponse
	if err := a.doRequest(ctx, http.MethodGet, "/fees/?"+query.Encode(), nil, &resp); err != nil {
		return decimal.Zero, err
	}
	if len(resp.PerCommune) == 0 {
		return decimal.Zero, fmt.Errorf("yalidine: no fees published for wilaya %d", dest.WilayaID)
	}

	base, err := resolveBaseFee(&resp, dest)
	if err != nil {
		return decimal.Zero, err
	}

	cost := decimal.NewFromFloat(base)
	if extra := math.Ceil(billableWeightKg - includedWeightKg); extra > 0 {
		surcharge := decimal.NewFromFloat(resp.OversizeFee).Mul(decimal.NewFromFloat(extra))
		cost = cost.Add(surcharge)
	}
	return cost, nil
}

// resolveBaseFee picks the fee entry matching the destination. Stopdesk
// rates are uniform per wilaya, so any commune that publishes a desk
// rate serves; home delivery must match the commune by name.
func resolveBaseFee(fees *yalidineFeesResponse, dest shipping.Destination) (float64, error) {
	if dest.IsStopdesk {
		for _, fee := range fees.PerCommune {
			if fee.ExpressDesk > 0 {
				return fee.ExpressDesk, nil
			}
		}
		return 0, fmt.Errorf("yalidine: no stopdesk rate for wilaya %d", dest.WilayaID)
	}

	want := strings.ToLower(strings.TrimSpace(dest.Commune))
	for _, fee := range fees.PerCommune {
		if strings.ToLower(fee.CommuneName) == want {
			if fee.ExpressHome <= 0 {
				return 0, fmt.Errorf("yalidine: commune %q is not served for home delivery", dest.Commune)
			}
			return fee.ExpressHome, nil
		}
	}
	return 0, fmt.Errorf("yalidine: unknown commune %q in wilaya %d", dest.Commune, dest.WilayaID)
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

// doRequest performs an authenticated call and decodes the JSON body
// into result
func (a *YalidineAdapter) doRequest(ctx context.Context, method, path string, body io.Reader, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("yalidine: failed to create request: %w", err)
	}
	req.Header.Set("X-API-ID", a.config.APIID)
	req.Header.Set("X-API-TOKEN", a.config.APIToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("yalidine: request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxYalidineResponseSize))
	if err != nil {
		return fmt.Errorf("yalidine: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr yalidineError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("yalidine: API error %d: %s", apiErr.Error.Code, apiErr.Error.Message)
		}
		return fmt.Errorf("yalidine: unexpected status %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("yalidine: failed to decode response: %w", err)
	}
	return nil
}
