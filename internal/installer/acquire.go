package installer

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"toolenv-installer/internal/config"
	"toolenv-installer/internal/logger"
)

// Artifact is a locally available installable produced by acquisition. Its
// temp directory is released by Release, which must run on every exit path
// of the caller.
type Artifact struct {
	Tool string
	Path string

	tempDir string
}

// Release removes the artifact's scratch directory. Safe to call more than
// once and on a nil artifact.
func (a *Artifact) Release() {
	if a == nil || a.tempDir == "" {
		return
	}
	if err := os.RemoveAll(a.tempDir); err != nil {
		logger.Warn("[WARN] Failed to clean up temp directory %s: %v\n", a.tempDir, err)
	}
	a.tempDir = ""
}

// Acquirer turns unmanaged tool descriptors (local path or remote URL) into
// local installable artifacts.
type Acquirer struct {
	Config    *config.InstallConfiguration
	Fetcher   Fetcher
	Extractor Extractor
}

// Acquire produces the artifact for one unmanaged tool.
//
// Local paths are verified to exist. Remote URLs are downloaded into a fresh
// `download_` temp directory first, named after the final non-empty segment
// of the URL path. Either way the source then goes through extract-or-copy
// into a per-tool scratch directory.
func (a *Acquirer) Acquire(name string, desc config.ToolDescriptor, proxy *config.Proxy) (*Artifact, error) {
	switch desc.Kind {
	case config.KindLocalPath:
		if _, err := os.Stat(desc.Path); err != nil {
			return nil, &MissingSourceError{Tool: name, Path: desc.Path}
		}
		return a.stage(name, desc.Path, "")

	case config.KindRemote:
		filename, err := downloadFileName(desc.URL)
		if err != nil {
			return nil, err
		}
		dlDir, err := a.Config.CreateTempDir("download")
		if err != nil {
			return nil, err
		}
		dest := filepath.Join(dlDir, filename)
		if err := a.Fetcher.Download(name, desc.URL, dest, proxy); err != nil {
			os.RemoveAll(dlDir)
			return nil, err
		}
		return a.stage(name, dest, dlDir)

	default:
		return nil, fmt.Errorf("tool %q is not an unmanaged tool", name)
	}
}

// stage runs extract-or-copy into a per-tool temp directory. downloadDir, if
// non-empty, is a scratch directory holding the source that should be
// removed once staging is done.
func (a *Acquirer) stage(name, source, downloadDir string) (*Artifact, error) {
	if downloadDir != "" {
		defer os.RemoveAll(downloadDir)
	}

	tempDir, err := a.Config.CreateTempDir(name)
	if err != nil {
		return nil, err
	}
	path, err := a.extractOrCopy(source, tempDir)
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, err
	}
	return &Artifact{Tool: name, Path: path, tempDir: tempDir}, nil
}

// extractOrCopy extracts source into dest if it is a recognized archive,
// returning dest; otherwise it copies source into dest and returns the
// copied path.
func (a *Acquirer) extractOrCopy(source, dest string) (string, error) {
	if _, ok := a.Extractor.Classify(source); ok {
		if err := a.Extractor.Extract(source, dest); err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", source, err)
		}
		return dest, nil
	}
	return copyInto(source, dest)
}

// downloadFileName extracts the final non-empty segment of the URL path.
// A URL without any usable segment cannot name a downloadable file.
func downloadFileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("unsupported url format %q: %w", rawURL, err)
	}
	segments := strings.Split(u.Path, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i], nil
		}
	}
	return "", &UnusableURLError{URL: rawURL}
}

// copyInto copies a file or directory into the dest directory, keeping its
// base name, and returns the resulting path.
func copyInto(src, dest string) (string, error) {
	target := filepath.Join(dest, filepath.Base(src))
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if info.IsDir() {
		if err := copyDir(src, target); err != nil {
			return "", err
		}
		return target, nil
	}
	if err := copyFile(src, target, 0); err != nil {
		return "", err
	}
	return target, nil
}

// copyDir recursively copies the directory tree rooted at src to dst.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target, 0)
	})
}

// copyFile copies a file from src to dst, creating missing directories in the
// destination path. Permissions come from modeOverride if non-zero, otherwise
// from the source file.
func copyFile(src, dst string, modeOverride os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source failed: %w", err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create target failed: %w", err)
	}
	defer func() {
		cerr := out.Close()
		if err == nil {
			err = cerr
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy failed: %w", err)
	}

	if modeOverride != 0 {
		err = os.Chmod(dst, modeOverride)
	} else if stat, err2 := os.Stat(src); err2 == nil {
		err = os.Chmod(dst, stat.Mode())
	}
	return err
}
