package nlp

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/dustin/go-humanize"

	"github.com/slulibrary/nerdemo/config"
)

const checksumFile = ".checksum"

// ModelArchive is a remotely hosted .tar.gz of a prose model directory.
type ModelArchive struct {
	Name     string
	URL      string
	Checksum string // "sha256:<hex>"
}

// Downloader installs model archives into a local cache directory.
type Downloader struct {
	Client   *http.Client
	Attempts uint
	Delay    time.Duration
}

func NewDownloader(client *http.Client) *Downloader {
	return &Downloader{
		Client:   client,
		Attempts: 3,
		Delay:    time.Second,
	}
}

// InstallPath is where an archive named name is unpacked under cacheDir.
func InstallPath(cacheDir, name string) string {
	return filepath.Join(cacheDir, name)
}

// IsInstalled reports whether archive is already unpacked under cacheDir with a
// matching checksum.
func IsInstalled(cacheDir string, archive ModelArchive) bool {
	base := InstallPath(cacheDir, archive.Name)
	if checkProseModelDir(base) != nil {
		return false
	}
	recorded, err := os.ReadFile(filepath.Join(base, checksumFile))
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(recorded)) == archive.Checksum
}

// Install downloads, verifies and unpacks archive, replacing any previous
// install atomically. It returns the model directory.
func (d *Downloader) Install(ctx context.Context, archive ModelArchive, cacheDir string) (string, error) {
	finalPath := InstallPath(cacheDir, archive.Name)
	if IsInstalled(cacheDir, archive) {
		log.Debugf("model %s already installed at %s", archive.Name, finalPath)
		return finalPath, nil
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp(cacheDir, archive.Name+"-download-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	archivePath := filepath.Join(tmpDir, archive.Name+".tar.gz")
	err = retry.Do(
		func() error {
			return d.download(ctx, archive.URL, archivePath)
		},
		retry.Context(ctx),
		retry.Attempts(d.Attempts),
		retry.Delay(d.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warnf("model download attempt %d failed: %s", n+1, err)
		}),
	)
	if err != nil {
		return "", fmt.Errorf("downloading %s failed: %w", archive.URL, err)
	}

	if err := VerifyChecksum(archivePath, archive.Checksum); err != nil {
		return "", err
	}

	extractDir := filepath.Join(tmpDir, "extract")
	if err := os.MkdirAll(extractDir, 0o755); err != nil {
		return "", err
	}
	if err := ExtractTarGz(archivePath, extractDir); err != nil {
		return "", fmt.Errorf("extracting %s: %w", archivePath, err)
	}

	modelDir, err := findModelDir(extractDir)
	if err != nil {
		return "", err
	}

	oldPath := finalPath + ".bak"
	_ = os.RemoveAll(oldPath)
	if _, err := os.Stat(finalPath); err == nil {
		if err := os.Rename(finalPath, oldPath); err != nil {
			return "", err
		}
	}
	if err := os.Rename(modelDir, finalPath); err != nil {
		_ = os.Rename(oldPath, finalPath)
		return "", err
	}
	if err := os.WriteFile(filepath.Join(finalPath, checksumFile), []byte(archive.Checksum+"\n"), 0o644); err != nil {
		return "", err
	}
	_ = os.RemoveAll(oldPath)

	log.Infof("installed model %s at %s", archive.Name, finalPath)
	return finalPath, nil
}

func (d *Downloader) download(ctx context.Context, url, dest string) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Unrecoverable(err)
	}
	req.Header.Set("User-Agent", config.UserAgent())

	resp, err := d.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("download status %s", resp.Status)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return retry.Unrecoverable(err)
		}
		return err
	}

	start := time.Now()
	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return err
	}

	log.Infof(
		"downloaded %s from %s in %s",
		humanize.Bytes(uint64(n)),
		url,
		time.Since(start).Round(time.Millisecond),
	)
	return nil
}

func VerifyChecksum(file, expected string) error {
	if strings.TrimSpace(expected) == "" {
		return errors.New("checksum missing")
	}
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return err
	}
	actual := "sha256:" + hex.EncodeToString(h.Sum(nil))
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

// ExtractTarGz unpacks regular files and directories, skipping entries that
// would escape dest.
func ExtractTarGz(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		clean := strings.TrimPrefix(filepath.Clean(hdr.Name), "./")
		if clean == "." || strings.HasPrefix(clean, "../") {
			continue
		}
		target := filepath.Join(dest, clean)
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeFile(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// findModelDir accepts archives with the model at the root or inside a single
// top-level directory.
func findModelDir(base string) (string, error) {
	candidates := []string{base}
	entries, _ := os.ReadDir(base)
	for _, e := range entries {
		if e.IsDir() {
			candidates = append(candidates, filepath.Join(base, e.Name()))
		}
	}

	for _, c := range candidates {
		if checkProseModelDir(c) == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid model archive: missing %s", proseModelFile)
}
