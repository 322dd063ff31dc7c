package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gncollector/pkg/glassnode"
)

// Catalog is the static list of known metric endpoints, in file order.
type Catalog struct {
	baseURL   string
	endpoints []glassnode.Endpoint
}

// Load reads the whole catalog file. A missing, unreadable or malformed file
// is an error; no partial catalog is returned.
func Load(path, baseURL string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data, baseURL)
}

// Parse decodes a catalog from its JSON array form.
func Parse(data []byte, baseURL string) (*Catalog, error) {
	var endpoints []glassnode.Endpoint
	if err := json.Unmarshal(data, &endpoints); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(endpoints, baseURL), nil
}

func New(endpoints []glassnode.Endpoint, baseURL string) *Catalog {
	return &Catalog{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
	}
}

// Endpoints returns a copy of every entry in file order.
func (c *Catalog) Endpoints() []glassnode.Endpoint {
	out := make([]glassnode.Endpoint, len(c.endpoints))
	copy(out, c.endpoints)
	return out
}

// SymbolForPath returns the first asset symbol of the first entry whose path
// equals path exactly.
func (c *Catalog) SymbolForPath(path string) (string, bool) {
	for _, e := range c.endpoints {
		if e.Path == path {
			return e.PrimarySymbol()
		}
	}
	return "", false
}

// SymbolForURL is SymbolForPath for a fully-qualified URL on the catalog host.
func (c *Catalog) SymbolForURL(metricURL string) (string, bool) {
	return c.SymbolForPath(strings.TrimPrefix(metricURL, c.baseURL))
}

// Metrics returns host+path for every entry of the given tier whose first
// asset is coin. Order follows the catalog file.
func (c *Catalog) Metrics(tier glassnode.Tier, coin string) []string {
	var urls []string
	for _, e := range c.Find(tier, coin) {
		urls = append(urls, c.baseURL+e.Path)
	}
	return urls
}

// Find is Metrics returning the matching entries instead of URLs.
func (c *Catalog) Find(tier glassnode.Tier, coin string) []glassnode.Endpoint {
	var out []glassnode.Endpoint
	for _, e := range c.endpoints {
		if e.Tier != int(tier) {
			continue
		}
		if sym, ok := e.PrimarySymbol(); ok && sym == coin {
			out = append(out, e)
		}
	}
	return out
}
