package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"setup-packages/internal/logger"
)

// DefaultSettings returns the built-in configuration for pacman with the yay and
// paru AUR helpers.
func DefaultSettings() Settings {
	return Settings{
		PackageManager: PackageManager{
			Command:       "pacman",
			InstalledArgs: []string{"-Q"},
			RepoArgs:      []string{"-Si"},
			InstallArgs:   []string{"-S", "--needed"},
			NoConfirmFlag: "--noconfirm",
			Sudo:          true,
		},
		Helpers: []Helper{
			{Name: "yay", InstallArgs: []string{"-S", "--needed"}, NoConfirmFlag: "--noconfirm"},
			{Name: "paru", InstallArgs: []string{"-S", "--needed"}, NoConfirmFlag: "--noconfirm"},
		},
		Jobs: 1,
	}
}

// LoadSettings reads the YAML settings file at path on top of DefaultSettings.
// Keys missing from the file keep their default values. An empty path returns
// the defaults unchanged.
func LoadSettings(path string) (Settings, error) {
	// Start from the built-in defaults
	st := DefaultSettings()
	if path == "" {
		logger.Debug("[DEBUG] No settings file given, using built-in defaults\n")
		return st, nil
	}

	// Read the YAML file from disk
	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	// Decode over the defaults; absent keys keep their default values
	if err := yaml.Unmarshal(raw, &st); err != nil {
		return Settings{}, fmt.Errorf("failed to unmarshal settings %s: %w", path, err)
	}

	// Fill partial helper entries, then reject unusable settings
	st.normalize()
	if err := st.Validate(); err != nil {
		return Settings{}, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	logger.Debug("[DEBUG] Loaded settings from %s: package manager %s, %d helpers\n",
		path, st.PackageManager.Command, len(st.Helpers))
	return st, nil
}

// normalize fills helper fields that a short YAML entry like `- name: paru` leaves empty.
func (s *Settings) normalize() {
	for i := range s.Helpers {
		// Helpers default to the yay/paru command line
		if len(s.Helpers[i].InstallArgs) == 0 {
			s.Helpers[i].InstallArgs = []string{"-S", "--needed"}
		}
		if s.Helpers[i].NoConfirmFlag == "" {
			s.Helpers[i].NoConfirmFlag = "--noconfirm"
		}
	}
	// Zero or negative jobs means sequential lookups
	if s.Jobs < 1 {
		s.Jobs = 1
	}
}

// Validate reports settings that cannot drive a run.
func (s Settings) Validate() error {
	if s.PackageManager.Command == "" {
		return errors.New("package_manager.command must not be empty")
	}
	// Without query arguments every package would look installed
	if len(s.PackageManager.InstalledArgs) == 0 || len(s.PackageManager.RepoArgs) == 0 {
		return errors.New("package_manager.installed_args and repo_args must not be empty")
	}
	for i, h := range s.Helpers {
		if h.Name == "" {
			return fmt.Errorf("helpers[%d].name must not be empty", i)
		}
	}
	return nil
}

// HelperNames lists the configured helper binaries in probe order.
func (s Settings) HelperNames() []string {
	names := make([]string, 0, len(s.Helpers))
	for _, h := range s.Helpers {
		names = append(names, h.Name)
	}
	return names
}

// Helper returns the settings for the named helper.
func (s Settings) Helper(name string) (Helper, bool) {
	for _, h := range s.Helpers {
		if h.Name == name {
			return h, true
		}
	}
	return Helper{}, false
}
