package juriscraper

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"os"
	"path/filepath"

	"github.com/navindex/juriscraper/storage/filesys"
)

// ------------------------------------------------------------------------

// ArchiveSink persists an archive response's body and returns the path
// it was written to. It is the Go equivalent of the
// on_archive callback's signature.
type ArchiveSink func(body []byte, url string, expectedType string, storageDir string) (string, error)

// ------------------------------------------------------------------------

var archiveExtensions = map[string]string{
	"pdf":   ".pdf",
	"audio": ".mp3",
}

// ------------------------------------------------------------------------

// DefaultArchiveSink takes the last non-empty path segment as filename,
// or synthesizes one from the URL's hash and expected-type extension;
// sanitizes it via storage/filesys.SanitizeFileName; writes it under
// storageDir.
func DefaultArchiveSink(body []byte, rawURL string, expectedType string, storageDir string) (string, error) {
	name := filenameFromURL(rawURL, expectedType)
	name = filesys.SanitizeFileName(name)

	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(storageDir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}

	return abs, nil
}

// ------------------------------------------------------------------------

func filenameFromURL(rawURL string, expectedType string) string {
	if u, err := url.Parse(rawURL); err == nil {
		last := filepath.Base(u.Path)
		if last != "" && last != "." && last != "/" {
			return last
		}
	}

	h := sha256.Sum256([]byte(rawURL))

	return "download_" + hex.EncodeToString(h[:8]) + archiveExtensions[expectedType]
}
