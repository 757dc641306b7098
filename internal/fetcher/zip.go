package fetcher

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ExtractZIPFile extracts a single file from a ZIP archive by name.
// Returns the path to the extracted file.
func ExtractZIPFile(zipPath, fileName, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	for _, f := range r.File {
		if f.Name == fileName {
			return extractZIPEntry(f, destDir)
		}
	}

	return "", eris.Errorf("zip: file %q not found in archive", fileName)
}

// ExtractZIPMatch extracts the first regular file whose base name matches
// the glob pattern (path.Match syntax, case-insensitive).
func ExtractZIPMatch(zipPath, pattern, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	pattern = strings.ToLower(pattern)
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		ok, err := path.Match(pattern, strings.ToLower(path.Base(f.Name)))
		if err != nil {
			return "", eris.Wrapf(err, "zip: bad pattern %q", pattern)
		}
		if ok {
			return extractZIPEntry(f, destDir)
		}
	}

	return "", eris.Errorf("zip: no file matching %q in archive", pattern)
}

// ExtractZIPSingle extracts the single file from a ZIP that contains exactly one file.
func ExtractZIPSingle(zipPath, destDir string) (string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: open archive")
	}
	defer r.Close() //nolint:errcheck

	var files []*zip.File
	for _, f := range r.File {
		if !f.FileInfo().IsDir() {
			files = append(files, f)
		}
	}

	if len(files) != 1 {
		return "", eris.Errorf("zip: expected exactly 1 file, got %d", len(files))
	}

	return extractZIPEntry(files[0], destDir)
}

// extractZIPEntry writes one regular file entry into destDir, keeping its
// relative path.
func extractZIPEntry(f *zip.File, destDir string) (string, error) {
	// zip slip
	destPath := filepath.Join(destDir, f.Name)
	if !strings.HasPrefix(filepath.Clean(destPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", eris.Errorf("zip: illegal path %q (zip slip attempt)", f.Name)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return "", eris.Wrap(err, "zip: create parent directory")
	}

	rc, err := f.Open()
	if err != nil {
		return "", eris.Wrap(err, "zip: open entry")
	}
	defer rc.Close() //nolint:errcheck

	out, err := os.Create(destPath)
	if err != nil {
		return "", eris.Wrap(err, "zip: create file")
	}
	defer out.Close() //nolint:errcheck

	if _, err := io.Copy(out, rc); err != nil {
		return "", eris.Wrap(err, "zip: write file")
	}

	return destPath, nil
}
