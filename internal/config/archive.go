package config

import (
	"archive/tar"    // For reading .tar archives
	"archive/zip"    // For reading .zip archives
	"compress/bzip2" // For reading .bz2 compressed data
	"compress/gzip"  // For reading .gz compressed data
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // For reading .7z archives
	"github.com/xi2/xz"          // For reading .xz compressed data

	"setup-packages/internal/logger"
)

// maxManifestSize caps how much decompressed data is read for a single manifest.
const maxManifestSize = 32 << 20

var errNoJSONMember = errors.New("archive contains no .json file")

// readManifestFile returns the raw manifest JSON stored at path, routing on the
// file extension: archives yield their first .json member, single-stream
// compressors are decompressed, anything else is read as-is.
func readManifestFile(path string) ([]byte, error) {
	// Match extensions case-insensitively (e.g. packages.JSON.GZ)
	name := strings.ToLower(path)
	switch {
	case strings.HasSuffix(name, ".zip"):
		logger.Debug("[DEBUG] Manifest compression type is zip\n")
		return readZipMember(path)
	case strings.HasSuffix(name, ".7z"):
		logger.Debug("[DEBUG] Manifest compression type is .7z\n")
		return read7zMember(path)
	// Tar variants must be checked before the bare compressors below
	case strings.HasSuffix(name, ".tar"), strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"),
		strings.HasSuffix(name, ".tar.bz2"), strings.HasSuffix(name, ".tar.xz"):
		logger.Debug("[DEBUG] Manifest compression type is .tar.*\n")
		return readTarMember(path)
	case strings.HasSuffix(name, ".gz"), strings.HasSuffix(name, ".bz2"), strings.HasSuffix(name, ".xz"):
		logger.Debug("[DEBUG] Manifest compression type is %s\n", filepath.Ext(name))
		return readCompressed(path)
	default:
		// Plain JSON file
		return readLimited(path)
	}
}

// readLimited reads an uncompressed manifest file.
func readLimited(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readAllLimited(f)
}

// readAllLimited reads r up to maxManifestSize bytes.
func readAllLimited(r io.Reader) ([]byte, error) {
	// Read one byte past the cap so an oversized stream can be detected
	data, err := io.ReadAll(io.LimitReader(r, maxManifestSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxManifestSize {
		return nil, fmt.Errorf("manifest exceeds %d bytes", maxManifestSize)
	}
	return data, nil
}

// decompressor wraps r according to the compression suffix of name.
// Names without a known suffix are returned unwrapped.
func decompressor(name string, r io.Reader) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch {
	case strings.HasSuffix(name, ".gz"), strings.HasSuffix(name, ".tgz"):
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gr, gr.Close, nil
	case strings.HasSuffix(name, ".bz2"):
		// bzip2 readers hold no resources to release
		return bzip2.NewReader(r), noop, nil
	case strings.HasSuffix(name, ".xz"):
		// 0 selects the library's default dictionary size limit
		xzr, err := xz.NewReader(r, 0)
		if err != nil {
			return nil, nil, err
		}
		return xzr, noop, nil
	}
	return r, noop, nil
}

// readCompressed handles a single compressed JSON stream (.json.gz, .json.bz2, .json.xz).
func readCompressed(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Wrap the file in the decompressor matching its suffix
	r, closeFn, err := decompressor(strings.ToLower(path), f)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return readAllLimited(r)
}

// readTarMember handles tar and compressed tar variants
func readTarMember(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, closeFn, err := decompressor(strings.ToLower(path), f)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	// Walk the tar entries until the first regular .json file
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		// Skip directories, links and non-JSON files
		if hdr.Typeflag != tar.TypeReg || !isJSONName(hdr.Name) {
			continue
		}
		logger.Debug("[DEBUG] Using manifest member %s\n", hdr.Name)
		return readAllLimited(tr)
	}
	return nil, errNoJSONMember
}

// readZipMember extracts the first .json file of a .zip archive
func readZipMember(path string) ([]byte, error) {
	// Open the zip archive
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// Iterate over members in archive order
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isJSONName(f.Name) {
			continue
		}
		logger.Debug("[DEBUG] Using manifest member %s\n", f.Name)
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return readAllLimited(rc)
	}
	return nil, errNoJSONMember
}

// read7zMember extracts the first .json file of a .7z archive using the sevenzip library
func read7zMember(path string) ([]byte, error) {
	// Open the 7z archive for reading
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	// Iterate over members and take the first .json file
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !isJSONName(f.Name) {
			continue
		}
		logger.Debug("[DEBUG] Using manifest member %s\n", f.Name)
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return readAllLimited(rc)
	}
	return nil, errNoJSONMember
}

// isJSONName reports whether an archive member name ends in .json.
func isJSONName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}
