// Package archive packages a project tree into the zip bundle uploaded as
// function code.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/a-pavithraa/lambda-alias-deploy/common"
)

type Options struct {
	// ExcludedDirs and ExcludedFiles are matched against base names at every
	// level of the tree.
	ExcludedDirs  []string
	ExcludedFiles []string
	// OnEntry, if set, is called with the entry name after each file is added.
	OnEntry func(name string)
	// OnSkip, if set, is called for each symlink that is left out because it
	// does not resolve to a regular file.
	OnSkip func(name string, reason string)
}

// Build writes every non-excluded file under root into a deflate-compressed
// zip at archivePath and returns archivePath. A partially written archive is
// left on disk when Build fails.
func Build(root string, archivePath string, opts Options) (string, error) {
	if _, err := os.Stat(root); err != nil {
		return "", &common.ArchiveError{Path: root, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", &common.ArchiveError{Path: archivePath, Err: err}
	}
	self, err := filepath.Abs(archivePath)
	if err != nil {
		return "", &common.ArchiveError{Path: archivePath, Err: err}
	}

	out, err := os.Create(archivePath)
	if err != nil {
		return "", &common.ArchiveError{Path: archivePath, Err: err}
	}
	defer out.Close()

	zipWriter := zip.NewWriter(out)
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && slices.Contains(opts.ExcludedDirs, d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(opts.ExcludedFiles, d.Name()) {
			return nil
		}
		if abs, err := filepath.Abs(path); err == nil && abs == self {
			return nil
		}
		name, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name = filepath.ToSlash(name)
		if d.Type()&fs.ModeSymlink != 0 {
			// Linked files are stored with the target's contents.
			target, err := os.Stat(path)
			switch {
			case err != nil:
				opts.skip(name, err.Error())
				return nil
			case !target.Mode().IsRegular():
				opts.skip(name, "symlink target is not a regular file")
				return nil
			}
		} else if !d.Type().IsRegular() {
			return nil
		}
		if err := addFile(zipWriter, path, name); err != nil {
			return err
		}
		if opts.OnEntry != nil {
			opts.OnEntry(name)
		}
		return nil
	})
	if walkErr != nil {
		return "", &common.ArchiveError{Path: root, Err: walkErr}
	}
	if err := zipWriter.Close(); err != nil {
		return "", &common.ArchiveError{Path: archivePath, Err: err}
	}
	if err := out.Close(); err != nil {
		return "", &common.ArchiveError{Path: archivePath, Err: err}
	}
	return archivePath, nil
}

func (o Options) skip(name string, reason string) {
	if o.OnSkip != nil {
		o.OnSkip(name, reason)
	}
}

func addFile(zipWriter *zip.Writer, path string, name string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := zipWriter.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, file)
	return err
}

// Read loads the whole archive into memory.
func Read(archivePath string) ([]byte, error) {
	contents, err := os.ReadFile(archivePath)
	if err != nil {
		return nil, &common.ArchiveError{Path: archivePath, Err: err}
	}
	return contents, nil
}
