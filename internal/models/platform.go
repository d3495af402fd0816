package models

// Platform describes an operating system and an optional CPU architecture.
// An empty Arch means "any architecture".
type Platform struct {
	OS   string `json:"os" yaml:"os" toml:"os" validate:"required"`
	Arch string `json:"arch,omitempty" yaml:"arch,omitempty" toml:"arch,omitempty"`
}

// IsSupersetOf reports whether p covers other. A platform without an
// architecture covers every architecture of the same OS.
func (p Platform) IsSupersetOf(other Platform) bool {
	if p.Arch == "" {
		return p.OS == other.OS
	}
	return p == other
}

// String returns "os" or "os/arch"
func (p Platform) String() string {
	if p.Arch == "" {
		return p.OS
	}
	return p.OS + "/" + p.Arch
}

// Filterable is implemented by every item that may be restricted to a set of platforms.
type Filterable interface {
	Filters() []Platform
}
