package glassnode

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultBaseURL is the host every catalog path is resolved against.
const DefaultBaseURL = "https://api.glassnode.com"

// DefaultEndpointsPath lists every metric endpoint with its tier and assets.
const DefaultEndpointsPath = "/v2/metrics/endpoints"

// Tier is the subscription level gating which endpoints are queryable.
type Tier int

const (
	TierFree         Tier = 1
	TierAdvanced     Tier = 2
	TierProfessional Tier = 3
)

var tierNames = map[Tier]string{
	TierFree:         "free",
	TierAdvanced:     "advanced",
	TierProfessional: "professional",
}

// IsValid checks if the Tier is a known subscription level
func (t Tier) IsValid() bool {
	_, ok := tierNames[t]
	return ok
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return "tier(" + strconv.Itoa(int(t)) + ")"
}

// ParseTier accepts either the tier number ("1") or its name ("free").
func ParseTier(s string) (Tier, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if t := Tier(n); t.IsValid() {
			return t, nil
		}
		return 0, fmt.Errorf("invalid tier: %s", s)
	}
	for t, name := range tierNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("invalid tier: %s", s)
}
