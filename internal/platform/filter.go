// Package platform decides which instruction items apply to the running machine.
package platform

import (
	"runtime"

	"github.com/Solipath/Solipath/internal/models"
)

// Filter holds one immutable snapshot of the current platform.
type Filter struct {
	current models.Platform
	all     bool
}

// NewFilter returns a filter for the given platform
func NewFilter(current models.Platform) *Filter {
	return &Filter{current: current}
}

// NewCurrentFilter returns a filter for the machine this binary runs on
func NewCurrentFilter() *Filter {
	return NewFilter(Current())
}

// NewUnfiltered returns a filter that accepts every item. Link checking uses
// it to cover downloads for all platforms at once.
func NewUnfiltered() *Filter {
	return &Filter{all: true}
}

// Current returns the platform of this process using instruction naming.
func Current() models.Platform {
	return FromGo(runtime.GOOS, runtime.GOARCH)
}

// FromGo maps Go's GOOS/GOARCH values onto the names used by instruction documents.
func FromGo(goos, goarch string) models.Platform {
	return models.Platform{OS: OSName(goos), Arch: ArchName(goarch)}
}

// OSName maps a GOOS value
func OSName(goos string) string {
	switch goos {
	case "darwin":
		return "macos"
	default:
		return goos
	}
}

// ArchName maps a GOARCH value
func ArchName(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	case "386":
		return "x86"
	default:
		return goarch
	}
}

// Current returns the snapshot this filter compares against
func (f *Filter) Current() models.Platform {
	return f.current
}

// Matches reports whether an item with the given filters applies.
func (f *Filter) Matches(filters []models.Platform) bool {
	if f.all {
		return true
	}
	return Matches(f.current, filters)
}

// Matches is true when filters is empty or any filter covers current.
func Matches(current models.Platform, filters []models.Platform) bool {
	if len(filters) == 0 {
		return true
	}
	for _, p := range filters {
		if p.IsSupersetOf(current) {
			return true
		}
	}
	return false
}

// Apply keeps the items that match, preserving order.
func Apply[T models.Filterable](f *Filter, items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.Matches(item.Filters()) {
			out = append(out, item)
		}
	}
	return out
}
