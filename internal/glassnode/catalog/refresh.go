package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// EndpointSource downloads the raw endpoint listing.
type EndpointSource interface {
	GetEndpoints(ctx context.Context, path string) ([]byte, error)
	BaseURL() string
}

// Refresh downloads the endpoint listing, writes it to file as indented JSON
// and returns the loaded catalog. The file is only replaced once the listing
// has been decoded.
func Refresh(ctx context.Context, src EndpointSource, listingPath, file string, logger *zap.Logger) (*Catalog, error) {
	raw, err := src.GetEndpoints(ctx, listingPath)
	if err != nil {
		logger.Error("failed to download endpoint catalog", zap.Error(err))
		return nil, err
	}

	cat, err := Parse(raw, src.BaseURL())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent catalog: %w", err)
	}
	buf.WriteByte('\n')

	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}
	tmp := file + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("write catalog: %w", err)
	}
	if err := os.Rename(tmp, file); err != nil {
		return nil, fmt.Errorf("replace catalog: %w", err)
	}

	logger.Info("catalog refreshed", zap.String("file", file), zap.Int("endpoints", len(cat.endpoints)))
	return cat, nil
}
