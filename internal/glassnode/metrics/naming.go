package metrics

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// MergedSuffix ends the file name of every merged table.
const MergedSuffix = "-metrics-concatenated.csv"

// ColumnName builds "<coin> <endpoint> <field path>" with dots in the
// field path replaced by spaces.
func ColumnName(coin, endpoint, fieldPath string) string {
	return coin + " " + endpoint + " " + strings.ReplaceAll(fieldPath, ".", " ")
}

// DirName is the per-coin directory holding its metric tables.
func DirName(coin string) string {
	return coin + "-metrics"
}

// FileName is the metric table file name for a (coin, endpoint) pair.
func FileName(coin, endpoint string) string {
	return coin + "-" + endpoint + ".csv"
}

// TablePath joins the output root with the coin directory and file name.
func TablePath(root, coin, endpoint string) string {
	return filepath.Join(root, DirName(coin), FileName(coin, endpoint))
}

// EndpointName returns the last path segment of a metric URL,
// e.g. ".../v1/metrics/indicators/sopr" → "sopr".
func EndpointName(metricURL string) string {
	p := metricURL
	if u, err := url.Parse(metricURL); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// QualifiedEndpointName namespaces an endpoint with its parent path segment,
// e.g. ".../v1/metrics/indicators/sopr" → "indicators_sopr".
func QualifiedEndpointName(metricURL string) string {
	p := metricURL
	if u, err := url.Parse(metricURL); err == nil {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	parent := path.Base(path.Dir(p))
	if parent == "." || parent == "/" {
		return path.Base(p)
	}
	return parent + "_" + path.Base(p)
}

// MergedName derives the merged table base name from its input directories:
// each directory base name with any "-metrics" suffix removed, joined by "-".
func MergedName(dirs []string) string {
	parts := make([]string, 0, len(dirs))
	for _, d := range dirs {
		base := filepath.Base(filepath.Clean(d))
		parts = append(parts, strings.TrimSuffix(base, "-metrics"))
	}
	return strings.Join(parts, "-")
}

// MergedFileName is MergedName plus MergedSuffix.
func MergedFileName(dirs []string) string {
	return MergedName(dirs) + MergedSuffix
}
