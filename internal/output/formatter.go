// Package output renders profiles, VM status and launch history as text
// tables, JSON or YAML.
package output

import (
	"fmt"

	"github.com/qvmctl/qvm/internal/session"
	"github.com/qvmctl/qvm/internal/vm"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

// Format is an output format name accepted by -o.
type Format string

const (
	// FormatTable is plain text for people.
	FormatTable Format = "table"
	// FormatYAML is YAML.
	FormatYAML Format = "yaml"
	// FormatJSON is indented JSON.
	FormatJSON Format = "json"
)

// Formatter formats command results.
type Formatter interface {
	// FormatNames formats the sorted profile names printed by list.
	FormatNames(names []string) (string, error)

	// FormatProfile formats the single profile printed by `show <name>`.
	FormatProfile(p vmconfig.Profile) (string, error)

	// FormatProfiles formats every profile with its template.
	FormatProfiles(profiles []vmconfig.Profile) (string, error)

	// FormatStatus formats the running state of a VM.
	FormatStatus(s vm.Status) (string, error)

	// FormatLaunches formats launch history records.
	FormatLaunches(launches []*session.Launch) (string, error)
}

// NewFormatter returns the Formatter for format.
func NewFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatTable, "":
		return &TableFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	switch Format(format) {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
