package output

import (
	"encoding/json"
	"fmt"

	"github.com/qvmctl/qvm/internal/session"
	"github.com/qvmctl/qvm/internal/vm"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

// JSONFormatter formats results as indented JSON.
type JSONFormatter struct{}

func (f *JSONFormatter) FormatNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	return marshalJSON(names, "profile names")
}

func (f *JSONFormatter) FormatProfile(p vmconfig.Profile) (string, error) {
	return marshalJSON(p, "profile")
}

func (f *JSONFormatter) FormatProfiles(profiles []vmconfig.Profile) (string, error) {
	if profiles == nil {
		profiles = []vmconfig.Profile{}
	}
	return marshalJSON(profiles, "profiles")
}

func (f *JSONFormatter) FormatStatus(s vm.Status) (string, error) {
	return marshalJSON(s, "status")
}

func (f *JSONFormatter) FormatLaunches(launches []*session.Launch) (string, error) {
	if launches == nil {
		launches = []*session.Launch{}
	}
	return marshalJSON(launches, "launches")
}

func marshalJSON(v any, what string) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to JSON: %w", what, err)
	}
	return string(data) + "\n", nil
}
