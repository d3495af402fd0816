package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// InstallInstructions is the decoded form of an instruction or template document.
type InstallInstructions struct {
	Downloads            []DownloadInstruction `json:"downloads,omitempty"`
	EnvironmentVariables []EnvironmentVariable `json:"environment_variables,omitempty"`
	Templates            []Template            `json:"templates,omitempty"`
	InstallCommands      []InstallCommand      `json:"install_commands,omitempty"`
}

// DownloadInstruction names an artifact to fetch into a directory below the
// dependency's downloads directory.
type DownloadInstruction struct {
	URL                  string     `json:"url"`
	DestinationDirectory string     `json:"destination_directory"`
	Platforms            []Platform `json:"platform_filters,omitempty"`

	// Optional integrity checks
	SHA256       string `json:"sha256,omitempty"`
	SignatureURL string `json:"signature_url,omitempty"`
}

// Filters implements Filterable
func (d DownloadInstruction) Filters() []Platform {
	return d.Platforms
}

// EnvironmentVariable sets or extends a variable before the command runs.
// RelativePath is resolved against the dependency's downloads directory.
type EnvironmentVariable struct {
	Name         string     `json:"name"`
	RelativePath *string    `json:"relative_path,omitempty"`
	Value        *string    `json:"value,omitempty"`
	Platforms    []Platform `json:"platform_filters,omitempty"`
}

// Filters implements Filterable
func (e EnvironmentVariable) Filters() []Platform {
	return e.Platforms
}

// Template references a shared, parametrised instruction fragment.
type Template struct {
	Name      string            `json:"name"`
	Variables map[string]string `json:"variables,omitempty"`
	Platforms []Platform        `json:"platform_filters,omitempty"`
}

// Filters implements Filterable
func (t Template) Filters() []Platform {
	return t.Platforms
}

// InstallCommand is a shell line run inside the dependency's downloads directory.
type InstallCommand struct {
	Command   string         `json:"command"`
	Platforms []Platform     `json:"platform_filters,omitempty"`
	WhenToRun WhenToRunRules `json:"when_to_run_rules,omitempty"`
}

// Filters implements Filterable
func (c InstallCommand) Filters() []Platform {
	return c.Platforms
}

// RuleKind enumerates the known when_to_run rules
type RuleKind int

const (
	RuleFileDoesNotExist RuleKind = iota
)

// String returns the document key of the rule
func (k RuleKind) String() string {
	switch k {
	case RuleFileDoesNotExist:
		return "file_does_not_exist"
	default:
		return "unknown"
	}
}

// WhenToRunRule is one decoded rule. Path is relative to the downloads directory.
type WhenToRunRule struct {
	Kind RuleKind
	Path string
}

// WhenToRunRules is decoded from a JSON object whose keys are rule names.
// Keys are processed in sorted order so decoding is deterministic.
type WhenToRunRules []WhenToRunRule

// UnmarshalJSON rejects rule names it does not know.
func (r *WhenToRunRules) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rules := make(WhenToRunRules, 0, len(keys))
	for _, k := range keys {
		switch k {
		case RuleFileDoesNotExist.String():
			rules = append(rules, WhenToRunRule{Kind: RuleFileDoesNotExist, Path: raw[k]})
		default:
			return fmt.Errorf("%w: %q", ErrUnknownRule, k)
		}
	}

	*r = rules
	return nil
}

// MarshalJSON writes the rules back in their document form.
func (r WhenToRunRules) MarshalJSON() ([]byte, error) {
	raw := make(map[string]string, len(r))
	for _, rule := range r {
		raw[rule.Kind.String()] = rule.Path
	}
	return json.Marshal(raw)
}
