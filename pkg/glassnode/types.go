package glassnode

import "strconv"

// Endpoint is one entry of the endpoint catalog returned by /v2/metrics/endpoints.
type Endpoint struct {
	Path        string   `json:"path"`        // e.g., "/v1/metrics/indicators/sopr"
	Tier        int      `json:"tier"`        // subscription tier required to query it
	Assets      []Asset  `json:"assets"`      // assets the metric is available for
	Currencies  []string `json:"currencies"`  // e.g., "NATIVE", "USD"
	Resolutions []string `json:"resolutions"` // e.g., "24h", "1h"
	Formats     []string `json:"formats"`     // e.g., "JSON", "CSV"
}

// Asset identifies a coin an endpoint can be queried for.
type Asset struct {
	Symbol string   `json:"symbol"` // e.g., "BTC"
	Name   string   `json:"name"`   // e.g., "Bitcoin"
	Tags   []string `json:"tags"`
}

// PrimarySymbol returns the symbol of the first listed asset.
func (e Endpoint) PrimarySymbol() (string, bool) {
	if len(e.Assets) == 0 {
		return "", false
	}
	return e.Assets[0].Symbol, true
}

// ResponseError is returned for non-2xx responses. Glassnode puts a short
// plain-text or JSON reason in the body.
type ResponseError struct {
	StatusCode int
	Status     string
	Body       []byte
}

func (e *ResponseError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	status := e.Status
	if status == "" {
		status = strconv.Itoa(e.StatusCode)
	}
	return "glassnode: HTTP " + status + ", body " + string(body)
}
