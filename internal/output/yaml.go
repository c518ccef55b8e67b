package output

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/qvmctl/qvm/internal/session"
	"github.com/qvmctl/qvm/internal/vm"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct{}

func (f *YAMLFormatter) FormatNames(names []string) (string, error) {
	if names == nil {
		names = []string{}
	}
	return marshalYAML(names, "profile names")
}

func (f *YAMLFormatter) FormatProfile(p vmconfig.Profile) (string, error) {
	return marshalYAML(p, "profile")
}

func (f *YAMLFormatter) FormatProfiles(profiles []vmconfig.Profile) (string, error) {
	if profiles == nil {
		profiles = []vmconfig.Profile{}
	}
	return marshalYAML(profiles, "profiles")
}

func (f *YAMLFormatter) FormatStatus(s vm.Status) (string, error) {
	return marshalYAML(s, "status")
}

func (f *YAMLFormatter) FormatLaunches(launches []*session.Launch) (string, error) {
	if launches == nil {
		launches = []*session.Launch{}
	}
	return marshalYAML(launches, "launches")
}

func marshalYAML(v any, what string) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s to YAML: %w", what, err)
	}
	return string(data), nil
}
