package models

// Dependency is one entry of a project's dependency file.
type Dependency struct {
	Name      string     `json:"name" yaml:"name" toml:"name" validate:"required"`
	Version   string     `json:"version" yaml:"version" toml:"version" validate:"required"`
	Platforms []Platform `json:"platform_filters,omitempty" yaml:"platform_filters,omitempty" toml:"platform_filters,omitempty" validate:"dive"`
}

// Filters implements Filterable
func (d Dependency) Filters() []Platform {
	return d.Platforms
}

// String returns "name@version"
func (d Dependency) String() string {
	if d.Name == "" && d.Version == "" {
		return ""
	}
	return d.Name + "@" + d.Version
}
