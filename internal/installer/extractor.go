package installer

import (
	"archive/tar"    // Reading .tar archives
	"archive/zip"    // Reading .zip archives
	"compress/bzip2" // Reading .bz2 compressed data
	"compress/gzip"  // Reading .gz compressed data
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip" // Reading .7z archives
	"github.com/xi2/xz"          // Reading .xz compressed data

	"toolenv-installer/internal/logger"
)

// ArchiveKind identifies a supported archive format.
type ArchiveKind int

const (
	ArchiveZip ArchiveKind = iota
	Archive7z
	ArchiveTar
	ArchiveTarGz
	ArchiveTarBz2
	ArchiveTarXz
)

// Extractor classifies and unpacks archives. The copy fallback for
// non-archives lives in the acquirer, not here.
type Extractor interface {
	// Classify reports the archive kind of path, or false if the file is
	// not a recognized archive.
	Classify(path string) (ArchiveKind, bool)
	// Extract unpacks the archive at src into the dest directory.
	Extract(src, dest string) error
}

// NewExtractor returns the suffix-classifying archive extractor.
func NewExtractor() Extractor {
	return archiveExtractor{}
}

type archiveExtractor struct{}

// Classify decides the archive kind from the file name suffix.
func (archiveExtractor) Classify(path string) (ArchiveKind, bool) {
	switch {
	case strings.HasSuffix(path, ".zip"):
		return ArchiveZip, true
	case strings.HasSuffix(path, ".7z"):
		return Archive7z, true
	case strings.HasSuffix(path, ".tar.gz"), strings.HasSuffix(path, ".tgz"):
		return ArchiveTarGz, true
	case strings.HasSuffix(path, ".tar.bz2"):
		return ArchiveTarBz2, true
	case strings.HasSuffix(path, ".tar.xz"):
		return ArchiveTarXz, true
	case strings.HasSuffix(path, ".tar"):
		return ArchiveTar, true
	default:
		return 0, false
	}
}

// Extract routes to the appropriate extraction function based on archive type.
func (e archiveExtractor) Extract(src, dest string) error {
	kind, ok := e.Classify(src)
	if !ok {
		return fmt.Errorf("unsupported archive format: %s", src)
	}
	switch kind {
	case ArchiveZip:
		logger.Debug("[DEBUG] compression type is zip\n")
		return extractZip(src, dest)
	case Archive7z:
		logger.Debug("[DEBUG] compression type is .7z\n")
		return extract7z(src, dest)
	default:
		logger.Debug("[DEBUG] compression type is .tar.*\n")
		return extractTarArchive(src, dest, kind)
	}
}

// extractTarArchive handles tar and compressed tar variants.
func extractTarArchive(src, dest string, kind ArchiveKind) error {
	logger.Debug("[DEBUG] uncompressing %s to %s\n", src, dest)
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	switch kind {
	case ArchiveTarGz:
		gr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		reader = gr
	case ArchiveTarBz2:
		reader = bzip2.NewReader(f)
	case ArchiveTarXz:
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break // End of archive
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dest, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			outFile, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return err
			}
			outFile.Close()
		}
	}
	return nil
}

// extractZip extracts a .zip archive.
func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		path := filepath.Join(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extract7z handles .7z extraction using the sevenzip library.
func extract7z(src, dest string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open 7z archive: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		path := filepath.Join(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, f.Mode()); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		outFile, err := os.Create(path)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
