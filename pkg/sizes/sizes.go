// Package sizes provides package size oracles for reports.
//
// [Dir] measures packages unpacked on disk, [Map] serves fixed sizes, and
// [Cached] memoizes another oracle in a [cache.Cache]:
//
//	sizer := sizes.Cached(sizes.Dir("/var/cache/npm"), c, 24*time.Hour)
//	size, err := sizer.PackageSize(ctx, id)
package sizes

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/matzehuels/depinfo/pkg/cache"
	errs "github.com/matzehuels/depinfo/pkg/errors"
	"github.com/matzehuels/depinfo/pkg/npm"
	"github.com/matzehuels/depinfo/pkg/observability"
)

// ErrUnavailable is returned when an oracle has no size for a package.
var ErrUnavailable = errors.New("package size unavailable")

// Sizer reports the size in bytes of a resolved package.
type Sizer interface {
	PackageSize(ctx context.Context, id npm.PackageID) (uint64, error)
}

// Map serves sizes keyed by serialized package id.
type Map map[string]uint64

// PackageSize implements [Sizer].
func (m Map) PackageSize(_ context.Context, id npm.PackageID) (uint64, error) {
	if size, ok := m[id.Serialized()]; ok {
		return size, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnavailable, id)
}

// DirSizer sums the regular files of packages unpacked under a root
// directory laid out as <root>/<name>/<version>.
type DirSizer struct {
	root string
}

// Dir returns a [DirSizer] rooted at root.
func Dir(root string) *DirSizer {
	return &DirSizer{root: root}
}

// Root returns the package directory root.
func (d *DirSizer) Root() string { return d.root }

// PackageSize implements [Sizer]. Symlinks are not followed, and names that
// would escape the root are rejected.
func (d *DirSizer) PackageSize(ctx context.Context, id npm.PackageID) (uint64, error) {
	for _, part := range []string{id.Nv.Name, id.Nv.Version} {
		if err := errs.ValidatePackageName(part); err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, id, err)
		}
	}
	dir := filepath.Join(d.root, filepath.FromSlash(id.Nv.Name), id.Nv.Version)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return 0, fmt.Errorf("%w: %s: no directory %s", ErrUnavailable, id, dir)
	}

	var total uint64
	err = filepath.WalkDir(dir, func(_ string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !e.Type().IsRegular() {
			return nil
		}
		fi, err := e.Info()
		if err != nil {
			return err
		}
		total += uint64(fi.Size())
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnavailable, id, err)
	}
	return total, nil
}

// CachedSizer memoizes a [Sizer]. Only successful lookups are stored.
type CachedSizer struct {
	inner     Sizer
	cache     cache.Cache
	ttl       time.Duration
	namespace string
}

// Cached wraps inner with c. Entries expire after ttl (zero means never).
// When inner is a [*DirSizer] its root becomes part of the cache key.
func Cached(inner Sizer, c cache.Cache, ttl time.Duration) *CachedSizer {
	ns := ""
	if d, ok := inner.(*DirSizer); ok {
		ns = d.root
	}
	return &CachedSizer{inner: inner, cache: c, ttl: ttl, namespace: ns}
}

// PackageSize implements [Sizer]. Cache failures fall through to inner.
func (s *CachedSizer) PackageSize(ctx context.Context, id npm.PackageID) (uint64, error) {
	key := cache.SizeKey(s.namespace, id.Serialized())
	if data, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		if size, err := strconv.ParseUint(string(data), 10, 64); err == nil {
			observability.Cache().OnCacheHit(ctx, "size")
			return size, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, "size")

	size, err := s.inner.PackageSize(ctx, id)
	if err != nil {
		return 0, err
	}
	data := []byte(strconv.FormatUint(size, 10))
	if err := s.cache.Set(ctx, key, data, s.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "size", len(data))
	}
	return size, nil
}
