package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"photo-gallery/internal/logging"
)

// Provisioning errors. Callers match them with errors.Is.
var (
	ErrInvalidCategory = errors.New("invalid category name")
	ErrCategoryExists  = errors.New("category already exists")
	ErrRootNotWritable = errors.New("root directory not writable")
	ErrStubUnreadable  = errors.New("placeholder stub unreadable")
)

// DefaultStubName is the directory-listing placeholder copied into new categories.
const DefaultStubName = "index.html"

// A category is a single path segment: no separators, no leading dot.
var categoryNamePattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} _.\-]{0,127}$`)

// relativeParentRef matches a run of "../" segments in the stub content.
var relativeParentRef = regexp.MustCompile(`(?:\.\./)+`)

// Provisioner creates paired gallery/thumbnail directories for a category.
type Provisioner struct {
	GalleryRoot   string
	ThumbnailRoot string
	StubName      string
	DirMode       os.FileMode
	FileMode      os.FileMode
}

// NewProvisioner returns a provisioner with 0755 directories and 0644 stubs.
func NewProvisioner(galleryRoot, thumbnailRoot, stubName string) *Provisioner {
	if stubName == "" {
		stubName = DefaultStubName
	}
	return &Provisioner{
		GalleryRoot:   galleryRoot,
		ThumbnailRoot: thumbnailRoot,
		StubName:      stubName,
		DirMode:       0o755,
		FileMode:      0o644,
	}
}

// ValidCategoryName reports whether name can be used as a category directory.
func ValidCategoryName(name string) bool {
	return categoryNamePattern.MatchString(name)
}

// CreateCategoryDirs creates <gallery>/<name> and <thumbnail>/<name> and
// copies each root's stub into them. On failure nothing created by this call
// is left behind.
func (p *Provisioner) CreateCategoryDirs(name string) error {
	if !ValidCategoryName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, name)
	}

	roots := []string{p.GalleryRoot, p.ThumbnailRoot}
	stubs := make([][]byte, len(roots))

	for i, root := range roots {
		if err := CheckWritable(root); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrRootNotWritable, root, err)
		}

		if _, err := os.Lstat(filepath.Join(root, name)); err == nil {
			return fmt.Errorf("%w: %s", ErrCategoryExists, filepath.Join(root, name))
		}

		stub, err := os.ReadFile(filepath.Join(root, p.StubName))
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrStubUnreadable, filepath.Join(root, p.StubName), err)
		}
		stubs[i] = RewriteStub(stub)
	}

	var created []string
	rollback := func() {
		for i := len(created) - 1; i >= 0; i-- {
			if err := os.RemoveAll(created[i]); err != nil {
				logging.Error("Provisioner: failed to roll back %s: %v", created[i], err)
			}
		}
	}

	for i, root := range roots {
		dir := filepath.Join(root, name)
		if err := os.MkdirAll(dir, p.DirMode); err != nil {
			rollback()
			return fmt.Errorf("create %s: %w", dir, err)
		}
		created = append(created, dir)

		stubPath := filepath.Join(dir, p.StubName)
		if err := os.WriteFile(stubPath, stubs[i], p.FileMode); err != nil {
			rollback()
			return fmt.Errorf("write stub %s: %w", stubPath, err)
		}
	}

	logging.Info("Provisioner: created category %q (%s, %s)", name, created[0], created[1])
	return nil
}

// RewriteStub adjusts relative parent references in a root stub so they
// still resolve from one directory deeper ("../" becomes "../../").
func RewriteStub(content []byte) []byte {
	return relativeParentRef.ReplaceAllFunc(content, func(m []byte) []byte {
		out := make([]byte, 0, len(m)+3)
		out = append(out, "../"...)
		return append(out, m...)
	})
}
