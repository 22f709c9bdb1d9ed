package bundle

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"scriptsmith/internal/errors"
)

// Archive packs a written bundle directory into a tar.gz under
// archiveRoot and returns the archive path. The bundle directory is
// left in place.
func (p *Packager) Archive(b *Bundle, archiveRoot string) (string, error) {
	if b.Dir == "" {
		return "", errors.New(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"bundle has not been written to disk")
	}

	if err := os.MkdirAll(archiveRoot, 0o755); err != nil {
		return "", errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"cannot create archive directory", err)
	}

	archivePath := filepath.Join(archiveRoot, filepath.Base(b.Dir)+".tar.gz")
	out, err := os.Create(archivePath)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"cannot create archive file", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	entries, err := os.ReadDir(b.Dir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"cannot read bundle directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := addFile(tw, b.Dir, entry.Name()); err != nil {
			return "", errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
				fmt.Sprintf("cannot archive %s", entry.Name()), err)
		}
	}

	if err := tw.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"cannot finalize archive", err)
	}
	if err := gz.Close(); err != nil {
		return "", errors.Wrap(errors.ErrCodeBundleWrite, errors.StagePackaging,
			"cannot finalize archive", err)
	}

	p.logger.Info("bundle archived", "archive", archivePath)
	return archivePath, nil
}

func addFile(tw *tar.Writer, dir, name string) error {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	hdr.Name = name

	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}
