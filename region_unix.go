//go:build !windows

package shmbuf

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/edsrzf/mmap-go"
)

// defaultShmDir is the POSIX shared-memory convention; name normalisation
// adds the leading "/" regardless of whether /dev/shm actually exists,
// per spec section 6.
const defaultShmDir = "/dev/shm"

func shmBaseDir() string {
	if st, err := os.Stat(defaultShmDir); err == nil && st.IsDir() {
		return defaultShmDir
	}
	// Some POSIX-like sandboxes don't mount tmpfs at /dev/shm. Falling
	// back to the OS temp directory keeps the library usable there; the
	// wire protocol is unaffected, only the backing path changes.
	return os.TempDir()
}

// platformName applies the POSIX prefixing rule from spec section 6.
func platformName(name string) string {
	return "/" + strings.TrimPrefix(name, "/")
}

func shmPath(name string) string {
	trimmed := strings.TrimPrefix(platformName(name), "/")
	return filepath.Join(shmBaseDir(), trimmed)
}

// unixRegion is the POSIX-flavoured Region Provider backend: a regular
// file under /dev/shm (tmpfs, so it never touches a disk), mapped with
// github.com/edsrzf/mmap-go.
type unixRegion struct {
	file      *os.File
	mm        mmap.MMap
	path      string
	destroyed bool
}

// createRegion implements the Create operation of spec section 4.1. A
// stale file of the same name is removed first, since some kernels
// refuse to resize a tmpfs file that another mapping still has open.
//
// Unlinking the name is exclusively Destroy's job, per spec section 5;
// Close here never does it implicitly, for either the producer or the
// consumer side.
func createRegion(name string, size uint32) (*unixRegion, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	path := shmPath(name)
	_ = os.Remove(path)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, wrapStatus("createRegion", StatusCreationFailed, err)
	}
	if err := f.Truncate(int64(size)); err != nil {
		f.Close()
		os.Remove(path)
		return nil, wrapStatus("createRegion", StatusSizeSetFailed, err)
	}
	m, err := mmap.MapRegion(f, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, wrapStatus("createRegion", StatusMappingFailed, err)
	}
	return &unixRegion{file: f, mm: m, path: path}, nil
}

// openRegion implements the Open operation of spec section 4.1. A zero
// size auto-detects from the file's stat, since tmpfs files carry a real
// on-disk (well, on-tmpfs) size.
func openRegion(name string, size uint32) (*unixRegion, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	path := shmPath(name)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, wrapStatus("openRegion", StatusOpenFailed, err)
	}
	if size == 0 {
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, wrapStatus("openRegion", StatusOpenFailed, err)
		}
		size = uint32(st.Size())
	}
	m, err := mmap.MapRegion(f, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		f.Close()
		return nil, wrapStatus("openRegion", StatusMappingFailed, err)
	}
	return &unixRegion{file: f, mm: m, path: path}, nil
}

func (u *unixRegion) Base() []byte { return u.mm }

func (u *unixRegion) Destroy() error {
	if u.destroyed {
		return nil
	}
	u.destroyed = true
	if err := os.Remove(u.path); err != nil && !os.IsNotExist(err) {
		return wrapStatus("Destroy", StatusCreationFailed, err)
	}
	return nil
}

func (u *unixRegion) Close() error {
	if err := u.mm.Unmap(); err != nil {
		return err
	}
	return u.file.Close()
}
