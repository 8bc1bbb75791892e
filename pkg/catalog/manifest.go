package catalog

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	skyerrors "github.com/matzehuels/skyrender/pkg/errors"
	skyio "github.com/matzehuels/skyrender/pkg/io"
)

// The embedded listing is refreshed from upstream with go generate.
//
//go:generate go run ../../cmd/skyrender manifest sync --output gaia_source_md5.txt
//go:embed gaia_source_md5.txt
var embeddedManifest []byte

// SyncedManifestName is the file name of the upstream listing stored in the
// cache directory by [SyncManifest].
const SyncedManifestName = "_MD5SUM.txt"

// Entry is one shard listed in a manifest.
type Entry struct {
	Checksum string `json:"checksum,omitempty"` // hex MD5 of the compressed shard, empty = unverified
	Filename string `json:"filename"`
}

// Manifest is the ordered list of shards that make up the catalog.
// Its order is the traversal order of every run.
type Manifest []Entry

// ManifestSource tells where a loaded manifest came from.
type ManifestSource string

const (
	SourceFile     ManifestSource = "file"
	SourceSynced   ManifestSource = "synced"
	SourceEmbedded ManifestSource = "embedded"
)

// ParseManifest reads "<md5> <filename>" lines. Blank lines and lines
// starting with '#' are ignored. A line with a single field is a filename
// without checksum. Duplicate filenames are rejected.
func ParseManifest(r io.Reader) (Manifest, error) {
	var (
		m    Manifest
		seen = make(map[string]int)
		n    int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		n++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var e Entry
		switch parts := strings.Fields(line); len(parts) {
		case 1:
			e.Filename = parts[0]
		case 2:
			e.Checksum, e.Filename = strings.ToLower(parts[0]), parts[1]
		default:
			return nil, skyerrors.New(skyerrors.ErrCodeInvalidManifest,
				"line %d: expected \"<md5> <filename>\", got %q", n, line)
		}
		if err := skyerrors.ValidateChecksum(e.Checksum); err != nil {
			return nil, skyerrors.Wrap(skyerrors.ErrCodeInvalidManifest, err, "line %d", n)
		}
		if err := skyerrors.ValidateShardFilename(e.Filename); err != nil {
			return nil, skyerrors.Wrap(skyerrors.ErrCodeInvalidManifest, err, "line %d", n)
		}
		if prev, ok := seen[e.Filename]; ok {
			return nil, skyerrors.New(skyerrors.ErrCodeInvalidManifest,
				"line %d: %s already listed on line %d", n, e.Filename, prev)
		}
		seen[e.Filename] = n
		m = append(m, e)
	}
	if err := sc.Err(); err != nil {
		return nil, skyerrors.Wrap(skyerrors.ErrCodeInvalidManifest, err, "read manifest")
	}
	return m, nil
}

// EmbeddedManifest returns the manifest compiled into the binary.
func EmbeddedManifest() (Manifest, error) {
	return ParseManifest(bytes.NewReader(embeddedManifest))
}

// LoadManifest resolves the manifest for a run: the file at path if set,
// otherwise the copy synced into cacheDir if present, otherwise the
// embedded manifest.
func LoadManifest(path, cacheDir string) (Manifest, ManifestSource, error) {
	if path != "" {
		m, err := loadManifestFile(path)
		return m, SourceFile, err
	}
	if cacheDir != "" {
		synced := filepath.Join(cacheDir, SyncedManifestName)
		if _, err := os.Stat(synced); err == nil {
			m, err := loadManifestFile(synced)
			return m, SourceSynced, err
		}
	}
	m, err := EmbeddedManifest()
	return m, SourceEmbedded, err
}

func loadManifestFile(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, skyerrors.Wrap(skyerrors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, skyerrors.Wrap(skyerrors.ErrCodeInvalidPath, err, "manifest %s", path)
	}
	defer f.Close()

	m, err := ParseManifest(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// SyncManifest downloads the upstream listing with fetch, validates it and
// stores it atomically in cacheDir, where [LoadManifest] picks it up.
func SyncManifest(ctx context.Context, fetch func(context.Context) ([]byte, error), cacheDir string) (Manifest, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, skyerrors.Wrap(skyerrors.ErrCodeCacheIO, err, "create cache dir")
	}
	return SyncManifestFile(ctx, fetch, filepath.Join(cacheDir, SyncedManifestName))
}

// SyncManifestFile is [SyncManifest] with an explicit destination. Nothing
// is written unless the listing parses and names at least one shard.
func SyncManifestFile(ctx context.Context, fetch func(context.Context) ([]byte, error), path string) (Manifest, error) {
	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, skyerrors.New(skyerrors.ErrCodeInvalidManifest, "downloaded manifest lists no shards")
	}
	if err := skyio.WriteBytesAtomic(path, data); err != nil {
		return nil, skyerrors.Wrap(skyerrors.ErrCodeCacheIO, err, "store manifest")
	}
	return m, nil
}
