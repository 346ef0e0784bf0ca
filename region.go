package shmbuf

import "fmt"

// maxNameLength is the ASCII name length bound from spec section 6.
const maxNameLength = 62

// regionProvider is the "opaque Region Provider" of spec section 2.1: a
// thin, move-only wrapper around a named mapped byte range. It is the
// only thing ring.go and the facades depend on, so the two platform
// backends (region_unix.go, region_windows.go) never leak above this
// interface.
type regionProvider interface {
	// Base returns the mapped byte range, header included.
	Base() []byte
	// Destroy removes the name from the namespace; already-mapped
	// handles (this one included) stay valid until Close. The Windows
	// backend has no separate unlink, so there Destroy also unmaps and
	// closes this handle.
	Destroy() error
	// Close unmaps the region and releases the handle, without touching
	// the name in the namespace. Call Destroy first if the name should
	// stop resolving for future Opens.
	Close() error
}

// validateName checks the ASCII-and-length constraint from spec section
// 6; platform-specific prefixing (leading "/" on POSIX, none on
// Win32-style) happens in each backend's own platformName.
func validateName(name string) error {
	if name == "" {
		return wrapStatus("validateName", StatusInvalidName, fmt.Errorf("name is empty"))
	}
	if len(name) > maxNameLength {
		return wrapStatus("validateName", StatusInvalidName,
			fmt.Errorf("name %q exceeds %d characters", name, maxNameLength))
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c > 127 {
			return wrapStatus("validateName", StatusInvalidName,
				fmt.Errorf("name %q is not ASCII", name))
		}
	}
	return nil
}
