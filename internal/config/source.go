package config

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"setup-packages/internal/logger"
)

// isRemote reports whether source is an http(s) URL rather than a local path.
func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// fetchManifest downloads a remote manifest into a temporary file and returns its path.
// The file keeps the URL's base name as suffix so compressed manifests are still
// recognised by extension. The caller removes the file.
func fetchManifest(ctx context.Context, rawURL string) (string, error) {
	// Derive the temp file suffix from the last path element of the URL
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid manifest URL %s: %w", rawURL, err)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		base = "manifest.json"
	}

	// Bind the request to ctx so an interrupt aborts the download
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request for %s: %w", rawURL, err)
	}
	logger.Debug("[DEBUG] Fetching manifest from URL: %s\n", rawURL)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to GET %s: %w", rawURL, err)
	}
	// Ensure the response body stream is closed when the function returns
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close HTTP response body: %v\n", cerr)
		}
	}()

	// A 404 is treated like a missing local file; other non-200 codes are plain errors
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", fmt.Errorf("%w: %s", ErrManifestNotFound, rawURL)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("manifest fetch failed for %s: HTTP status %d", rawURL, resp.StatusCode)
	}

	// Create a temp file to store the downloaded manifest
	out, err := os.CreateTemp("", "manifest-*-"+base)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary manifest file: %w", err)
	}
	tmp := out.Name()

	// Copy the body into the temp file, stopping just past the size cap
	if _, err := io.Copy(out, io.LimitReader(resp.Body, maxManifestSize+1)); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write response to file: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to close temporary manifest file: %w", err)
	}

	logger.Debug("[DEBUG] Downloaded manifest to: %s\n", tmp)
	return tmp, nil
}
