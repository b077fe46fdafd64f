package psa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ddaumiller/psa-update/internal/utils"
)

// Public client identifier used by the vendor's own updater application.
const defaultAPIURL = "https://api.groupe-psa.com/applications/majesticf/v1/getAvailableUpdate?client_id=20a4cf7c-f5fb-41d5-9175-a6e23b9880e5"

// Region codes accepted by the --map flag, mapped to the API's per-region
// map software types.
var mapSoftwareTypes = map[string]string{
	"afr":         "map-afr",
	"alg":         "map-alg",
	"asia":        "map-asia",
	"eur":         "map-eur",
	"isr":         "map-isr",
	"latam":       "map-latam",
	"latam-chile": "map-latam-chile",
	"mea":         "map-mea",
	"oce":         "map-oce",
	"russia":      "map-russia",
	"taiwan":      "map-taiwan",
}

// SupportedMaps lists the accepted region codes, sorted.
func SupportedMaps() []string {
	codes := make([]string, 0, len(mapSoftwareTypes))
	for code := range mapSoftwareTypes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

type Client struct {
	HTTP   utils.HTTPDoer
	APIURL string
}

func NewClient(httpClient utils.HTTPDoer) *Client {
	return &Client{
		HTTP:   httpClient,
		APIURL: defaultAPIURL,
	}
}

// RequestAvailableUpdates asks the vendor catalog which firmware (and,
// optionally, map) updates exist for a VIN.
func (c *Client) RequestAvailableUpdates(ctx context.Context, vin string, mapCode string) (*UpdateResponse, error) {
	body := updateRequest{
		VIN: vin,
		SoftwareTypes: []softwareTypeField{
			{SoftwareType: SoftwareTypeNAC},
			{SoftwareType: SoftwareTypeRCC},
		},
	}
	if mapCode != "" {
		mapType, ok := mapSoftwareTypes[strings.ToLower(mapCode)]
		if !ok {
			return nil, fmt.Errorf("unsupported map %q, expected one of: %s", mapCode, strings.Join(SupportedMaps(), ", "))
		}
		body.SoftwareTypes = append(body.SoftwareTypes, softwareTypeField{SoftwareType: mapType})
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error encoding update request: %v", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("error creating update request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("op", "psa/client").Msgf("Checking updates for VIN %s", vin)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error requesting available updates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("update API returned status %d", resp.StatusCode)
	}

	var updateResponse UpdateResponse
	if err := json.NewDecoder(resp.Body).Decode(&updateResponse); err != nil {
		return nil, fmt.Errorf("error decoding update response: %v", err)
	}
	if updateResponse.RequestResult != "OK" {
		return nil, fmt.Errorf("update request failed with result %q", updateResponse.RequestResult)
	}
	return &updateResponse, nil
}
