package extract

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/rs/zerolog/log"
)

// Extract unpacks a downloaded firmware archive (tar, optionally gzipped)
// into destDir. Archive entries must stay inside destDir; anything escaping
// it fails the extraction.
func Extract(archivePath string, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive %s: %v", archivePath, err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(archivePath, ".gz") || strings.HasSuffix(archivePath, ".tgz") {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("failed to read gzip archive %s: %v", archivePath, err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	log.Info().Str("op", "extract").Msgf("Extracting %s to %s", archivePath, destDir)
	tarReader := tar.NewReader(reader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading archive %s: %v", archivePath, err)
		}
		targetPath, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}
		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(targetPath, os.FileMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to create directory %s: %v", targetPath, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return fmt.Errorf("failed to create directory for %s: %v", targetPath, err)
			}
			if err := writeFile(targetPath, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}
		default:
			log.Debug().Str("op", "extract").Msgf("Skipping unsupported entry %s (type %d)", header.Name, header.Typeflag)
		}
	}
	return nil
}

// securePath joins an archive entry name onto destDir, rejecting absolute
// names and names that traverse out of the destination.
func securePath(destDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("archive entry %s has an absolute path", name)
	}
	targetPath := filepath.Join(destDir, name)
	// GNU tar archives carry a "./" entry for the root itself
	if targetPath == filepath.Clean(destDir) {
		return targetPath, nil
	}
	if !strings.HasPrefix(targetPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %s escapes destination directory", name)
	}
	return targetPath, nil
}

func writeFile(path string, r io.Reader, mode os.FileMode) error {
	outFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %v", path, err)
	}
	defer outFile.Close()
	if _, err := io.Copy(outFile, r); err != nil {
		return fmt.Errorf("error writing file %s: %v", path, err)
	}
	return nil
}
