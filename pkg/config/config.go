// Package config builds the per-invocation settings for ecsctl.
// Precedence, lowest to highest: environment defaults, the optional
// defaults file under $HOME/.ecsctl, command-line flags. The resulting
// Settings value is completed and validated once, then passed
// explicitly to every operation; nothing mutates it afterwards.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ecsops/ecsctl/pkg/common"
)

// Settings is the resolved configuration for one invocation.
type Settings struct {
	Region    string `yaml:"region,omitempty"`
	Cluster   string `yaml:"cluster,omitempty"`
	Service   string `yaml:"-"`
	Operation string `yaml:"-"`
	Debug     bool   `yaml:"debug,omitempty"`

	// LogFile, when set, enables rotating JSON file logging.
	LogFile string `yaml:"logFile,omitempty"`
	// EndpointURL overrides the control-plane endpoint, for local
	// simulators. Static test credentials are used when set.
	EndpointURL string `yaml:"endpointURL,omitempty"`
}

// FromEnv returns settings seeded from the environment.
func FromEnv() Settings {
	return Settings{
		Region:      os.Getenv("AWS_REGION"),
		Cluster:     os.Getenv("ECSCTL_CLUSTER"),
		LogFile:     os.Getenv("ECSCTL_LOG_FILE"),
		EndpointURL: os.Getenv("AWS_ENDPOINT_URL"),
	}
}

// Load returns settings from the environment, overlaid with the
// defaults file if one exists. A missing file is fine; an unreadable
// or malformed one is an error.
func Load() (Settings, error) {
	s := FromEnv()
	path, err := defaultsFilePath()
	if err != nil {
		return s, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return s, errors.Wrapf(err, "failed to read defaults file %s", path)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "failed to parse defaults file %s", path)
	}
	return s, nil
}

// Complete normalizes the settings in place. A region outside the
// supported set (including an empty one) falls back to the default.
func (s *Settings) Complete() {
	if !common.IsSupportedRegion(s.Region) {
		s.Region = common.DefaultRegion
	}
}

// Validate checks the fields every subcommand needs. Service presence
// is checked at dispatch time because it depends on the subcommand.
func (s *Settings) Validate() error {
	if s.Cluster == "" {
		return errors.New("cluster is required")
	}
	if s.Operation == "" {
		return errors.New("no subcommand to execute")
	}
	return nil
}

func defaultsFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user home directory")
	}
	return filepath.Join(home, common.DefaultConfigDir, common.DefaultConfigFile), nil
}
