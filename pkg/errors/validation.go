package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// shardFilenameRegex matches the names used by the gaia_source directory,
// e.g. "GaiaSource_000000-003111.csv.gz".
var shardFilenameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateShardFilename validates a shard filename taken from a manifest.
// Shard names end up in both a remote URL and a local cache path, so the
// rules are conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - No hidden files
//   - Maximum length of 256 characters
func ValidateShardFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "shard filename cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidManifest, "shard filename too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "shard filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidManifest, "shard filename cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidManifest, "shard filename cannot contain path traversal sequences (..)")
	}

	if !shardFilenameRegex.MatchString(name) {
		return New(ErrCodeInvalidManifest, "invalid shard filename: %q", name)
	}

	return nil
}

// md5Regex matches a lowercase or uppercase hex MD5 digest.
var md5Regex = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// ValidateChecksum validates a manifest checksum field.
// An empty checksum is accepted and means "not verified".
func ValidateChecksum(sum string) error {
	if sum == "" || md5Regex.MatchString(sum) {
		return nil
	}
	return New(ErrCodeInvalidManifest, "checksum must be a 32 character hex MD5 digest: %q", sum)
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateRange checks that value lies in [lo, hi] and returns an
// INVALID_CONFIG error naming the option otherwise.
func ValidateRange(option string, value, lo, hi int) error {
	if value < lo || value > hi {
		return New(ErrCodeInvalidConfig, "%s must be between %d and %d, got %d", option, lo, hi, value)
	}
	return nil
}
