package circuits

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/vocdoni/proof-artifacts/config"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/types"
)

// CheckHashes determines if the hashes of the artifacts are checked when they
// are loaded or downloaded. It is disabled by setting PROOFART_CHECK_HASHES
// to false or 0.
var CheckHashes = true

// BaseDir is the path of the artifact cache, where remote program artifacts
// are stored by content hash. Defaults to PROOFART_ARTIFACTS_DIR or a
// directory in the user cache.
var BaseDir string

// ErrNotCached is returned by Artifact.Load when the content is not in the
// local cache yet.
var ErrNotCached = errors.New("artifact not found in the local cache")

// progressInterval is the period of the download progress logs.
var progressInterval = 10 * time.Second

func init() {
	if checkHashes := os.Getenv(config.EnvCheckHashes); checkHashes != "" {
		if strings.ToLower(checkHashes) == "false" || checkHashes == "0" {
			CheckHashes = false
		}
	}
	if dir := os.Getenv(config.EnvArtifactsDir); dir != "" {
		BaseDir = dir
		return
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		log.Warnf("unable to access user home directory, using temporary directory: %v", err)
		BaseDir = filepath.Join(os.TempDir(), "proofart-artifacts")
		return
	}
	BaseDir = filepath.Join(home, ".cache", "proofart-artifacts")
}

// Artifact is a remote file addressed by the sha256 hash of its content.
// Once downloaded it is kept in BaseDir, named by its hash, so it is
// fetched only once.
type Artifact struct {
	RemoteURL string
	Hash      types.HexBytes
	Content   types.HexBytes
}

// Load loads the artifact content from the local cache, checking its hash.
// It returns ErrNotCached if the artifact has not been downloaded yet. It
// does nothing if the content is already loaded.
func (a *Artifact) Load() error {
	if len(a.Content) != 0 {
		return nil
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("artifact hash not provided")
	}
	content, err := load(a.Hash)
	if err != nil {
		return err
	}
	a.Content = content
	return nil
}

// Download downloads the artifact from its remote URL into the local cache,
// checking the hash of the content.
func (a *Artifact) Download(ctx context.Context) error {
	if a.RemoteURL == "" {
		return fmt.Errorf("artifact not loaded and remote url not provided")
	}
	if len(a.Hash) == 0 {
		return fmt.Errorf("artifact hash not provided")
	}
	return downloadAndStore(ctx, a.Hash, a.RemoteURL)
}

// Fetch loads the artifact from the local cache, downloading it first if it
// is not there yet.
func (a *Artifact) Fetch(ctx context.Context) error {
	err := a.Load()
	if !errors.Is(err, ErrNotCached) {
		return err
	}
	log.Infow("downloading artifact", "url", a.RemoteURL, "hash", a.Hash.String())
	if err := a.Download(ctx); err != nil {
		return err
	}
	return a.Load()
}

// CachePath returns the path of the artifact in the local cache.
func (a *Artifact) CachePath() string {
	return filepath.Join(BaseDir, hex.EncodeToString(a.Hash))
}

// ContentHash returns the sha256 hash of content, the address of an artifact.
func ContentHash(content []byte) types.HexBytes {
	h := sha256.Sum256(content)
	return h[:]
}

func load(hash []byte) ([]byte, error) {
	path := filepath.Join(BaseDir, hex.EncodeToString(hash))
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("error reading file %s: %w", path, err)
	}
	if CheckHashes {
		if fileHash := ContentHash(content); !bytes.Equal(fileHash, hash) {
			return nil, fmt.Errorf("hash mismatch for file %s: expected %x, got %x", path, hash, []byte(fileHash))
		}
	}
	return content, nil
}

// progressReader wraps an io.Reader and keeps track of the total bytes read.
type progressReader struct {
	reader        io.Reader
	total         int64 // updated atomically
	contentLength int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	atomic.AddInt64(&pr.total, int64(n))
	return n, err
}

func (pr *progressReader) logProgress(fileURL string) {
	total := atomic.LoadInt64(&pr.total)
	var percentage float64
	if pr.contentLength > 0 {
		percentage = (float64(total) / float64(pr.contentLength)) * 100
	}
	log.Debugw("download artifact", "url", fileURL,
		"downloaded", fmt.Sprintf("%.2fMiB", float64(total)/(1024*1024)),
		"progress", fmt.Sprintf("%.2f%%", percentage))
}

// downloadAndStore downloads a file into the local cache. A previous partial
// download is resumed when the server supports ranges.
func downloadAndStore(ctx context.Context, expectedHash []byte, fileURL string) error {
	if _, err := url.Parse(fileURL); err != nil {
		return fmt.Errorf("error parsing the file URL provided: %w", err)
	}
	if err := os.MkdirAll(BaseDir, 0o755); err != nil {
		return fmt.Errorf("error creating the cache directory: %w", err)
	}
	path := filepath.Join(BaseDir, hex.EncodeToString(expectedHash))
	partialPath := path + ".partial"

	var startByte int64
	if info, err := os.Stat(partialPath); err == nil {
		startByte = info.Size()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return fmt.Errorf("error creating the file request: %w", err)
	}
	if startByte > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", startByte))
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("error performing the request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("error downloading file %s: http status: %d", fileURL, res.StatusCode)
	}

	hasher := sha256.New()
	fileMode := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if startByte > 0 && res.StatusCode == http.StatusPartialContent {
		fileMode = os.O_APPEND | os.O_WRONLY
		// hash the existing content to continue the validation
		existing, err := os.ReadFile(partialPath)
		if err != nil {
			return fmt.Errorf("error reading partial download: %w", err)
		}
		hasher.Write(existing)
	} else {
		startByte = 0
	}
	fd, err := os.OpenFile(partialPath, fileMode, 0o644)
	if err != nil {
		return fmt.Errorf("error opening artifact file: %w", err)
	}
	defer fd.Close()

	pr := &progressReader{
		reader:        res.Body,
		contentLength: res.ContentLength + startByte,
	}
	done := make(chan error, 1)
	go func() {
		_, err := io.Copy(io.MultiWriter(fd, hasher), pr)
		done <- err
	}()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	for copying := true; copying; {
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("error copying data to file: %w", err)
			}
			copying = false
		case <-ticker.C:
			pr.logProgress(fileURL)
		}
	}

	if CheckHashes {
		if computedHash := hasher.Sum(nil); !bytes.Equal(computedHash, expectedHash) {
			if err := os.Remove(partialPath); err != nil {
				log.Warnw("could not remove invalid download", "path", partialPath, "error", err)
			}
			return fmt.Errorf("hash mismatch: expected %x, got %x", expectedHash, computedHash)
		}
	}
	if err := os.Rename(partialPath, path); err != nil {
		return fmt.Errorf("error renaming file: %w", err)
	}
	return nil
}
