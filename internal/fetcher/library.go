package fetcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultLibraryURL is the directory holding the Siccodes archives.
const DefaultLibraryURL = "https://" + LibraryHost + "/pages/faculty/ken.french/ftp"

// Schemes lists the industry groupings the library publishes.
var Schemes = []int{5, 10, 12, 17, 30, 38, 48, 49}

// ValidScheme reports whether n is a published grouping.
func ValidScheme(n int) bool {
	return slices.Contains(Schemes, n)
}

// SchemeURL returns the archive URL for a grouping, e.g. Siccodes49.zip.
func SchemeURL(baseURL string, scheme int) string {
	if baseURL == "" {
		baseURL = DefaultLibraryURL
	}
	return fmt.Sprintf("%s/Siccodes%d.zip", strings.TrimRight(baseURL, "/"), scheme)
}

// FetchScheme downloads the archive for scheme into destDir, extracts its
// text file and removes the archive. Returns the path of the text file.
func FetchScheme(ctx context.Context, f Fetcher, baseURL string, scheme int, destDir string) (string, error) {
	if !ValidScheme(scheme) {
		return "", eris.Errorf("fetch: unknown industry scheme %d (valid: %v)", scheme, Schemes)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", eris.Wrap(err, "fetch: create destination")
	}

	archiveURL := SchemeURL(baseURL, scheme)
	zipPath := filepath.Join(destDir, fmt.Sprintf("Siccodes%d.zip", scheme))
	n, err := f.DownloadToFile(ctx, archiveURL, zipPath)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: scheme %d", scheme)
	}
	defer os.Remove(zipPath) //nolint:errcheck

	txtPath, err := ExtractZIPMatch(zipPath, "*.txt", destDir)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: scheme %d", scheme)
	}

	zap.L().Info("fetched industry definitions",
		zap.Int("scheme", scheme),
		zap.String("url", archiveURL),
		zap.Int64("bytes", n),
		zap.String("path", txtPath),
	)
	return txtPath, nil
}
