package jcrroot

import (
	"archive/zip"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"github.com/jdigger/aem-grapher/pkg/descriptor"
	"github.com/jdigger/aem-grapher/pkg/errors"
	"github.com/jdigger/aem-grapher/pkg/jcr"
)

// DirName is the directory name that marks the start of a content tree.
const DirName = "jcr_root"

// Root is an opened jcr_root.
type Root struct {
	// FS is rooted at jcr_root.
	FS fs.FS
	// Path is the jcr_root directory, or the archive path for zip packages.
	Path string
	// Exclude holds doublestar patterns matched against names relative to
	// jcr_root. Matching directories are skipped entirely.
	Exclude []string

	closer io.Closer
}

// Close releases the underlying archive, if any.
func (r *Root) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Open resolves path to a jcr_root. Files ending in .zip are opened as
// package archives; other regular files are rejected. Directories are
// resolved with [FindRoot].
func Open(path string) (*Root, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot open %s", path)
	}
	if info.IsDir() {
		dir, err := FindRoot(path)
		if err != nil {
			return nil, err
		}
		return &Root{FS: os.DirFS(dir), Path: dir}, nil
	}
	return OpenPackageFile(path)
}

// OpenPackageFile opens a .zip content package.
func OpenPackageFile(path string) (*Root, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return nil, errors.New(errors.ErrCodeNotAPackageFile, "must be a .zip file: %s", path)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotAPackageFile, err, "cannot read package %s", path)
	}
	sub, err := fs.Sub(zr, DirName)
	if err != nil {
		zr.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "cannot open %s in %s", DirName, path)
	}
	if info, err := fs.Stat(sub, "."); err != nil || !info.IsDir() {
		zr.Close()
		return nil, errors.New(errors.ErrCodeJcrRootNotFound, "no %s in package %s", DirName, path)
	}
	return &Root{FS: sub, Path: path, closer: zr}, nil
}

// FindRoot returns the jcr_root directory for dir. A direct jcr_root child
// of dir is accepted; otherwise dir and its ancestors are searched for a
// directory named jcr_root.
func FindRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot resolve %s", dir)
	}

	if child := filepath.Join(abs, DirName); isDir(child) {
		return child, nil
	}

	// Each step removes one segment, so the walk ends within that many steps.
	limit := strings.Count(filepath.ToSlash(abs), "/") + 1
	for p := abs; limit > 0; limit-- {
		if filepath.Base(p) == DirName {
			return p, nil
		}
		parent := filepath.Dir(p)
		if parent == p {
			break
		}
		p = parent
	}
	return "", errors.New(errors.ErrCodeJcrRootNotFound, "could not find %s in %s", DirName, dir)
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

// Excluded reports whether name matches one of the exclude patterns.
func (r *Root) Excluded(name string) bool {
	for _, pattern := range r.Exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// ValidateExclude reports the first malformed exclude pattern.
func ValidateExclude(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return errors.New(errors.ErrCodeInvalidConfig, "invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Descriptors returns the names of all descriptor files under the root in
// lexical order, skipping excluded entries.
func (r *Root) Descriptors(ctx context.Context) ([]string, error) {
	var names []string
	err := fs.WalkDir(r.FS, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if name != "." && r.Excluded(name) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && descriptor.IsDescriptor(name) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Nodes extracts every component and clientlib under the root. Files that
// are not descriptors are skipped; I/O failures abort the walk.
func (r *Root) Nodes(ctx context.Context, e *descriptor.Extractor) ([]jcr.Node, error) {
	if e == nil {
		e = &descriptor.Extractor{}
	}
	logger := e.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	names, err := r.Descriptors(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("found descriptor files", "root", r.Path, "count", len(names))

	var nodes []jcr.Node
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, ok, err := e.Extract(r.FS, name)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "cannot read %s", name)
		}
		if !ok {
			continue
		}
		logger.Debug("extracted node", "kind", n.Kind(), "key", n.Key())
		nodes = append(nodes, n)
	}
	return nodes, nil
}
