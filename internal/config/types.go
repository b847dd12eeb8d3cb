package config

import "errors"

var (
	// ErrManifestNotFound is returned when the manifest path (or URL) does not exist.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrMalformedManifest is returned when the manifest is not valid JSON or does not
	// match the expected {"category": {"packages": ["name", ...]}} schema.
	ErrMalformedManifest = errors.New("malformed manifest")
)

// Category is one entry of the manifest.
// - Description: Optional human-readable text shown by the `categories` command.
// - Packages: Package names in the order they should be processed.
type Category struct {
	Description string
	Packages    []string
}

// Manifest maps category names to their package lists.
// Order records the categories in the order they appear in the file, which is the
// processing order when the caller does not pick categories explicitly.
type Manifest struct {
	Order      []string
	Categories map[string]Category
}

// PackageManager describes how to query and install from the main repository.
// - Command: Binary to invoke (e.g., pacman).
// - InstalledArgs: Arguments placed before the package name to test if it is installed.
// - RepoArgs: Arguments placed before the package name to test if the repo provides it.
// - InstallArgs: Arguments placed before the package list when installing.
// - NoConfirmFlag: Flag appended to InstallArgs when prompts should be suppressed.
// - Sudo: Prefix installs with sudo when not already running as root.
type PackageManager struct {
	Command       string   `yaml:"command"`
	InstalledArgs []string `yaml:"installed_args"`
	RepoArgs      []string `yaml:"repo_args"`
	InstallArgs   []string `yaml:"install_args"`
	NoConfirmFlag string   `yaml:"no_confirm_flag"`
	Sudo          bool     `yaml:"sudo"`
}

// Helper describes a secondary-repository (AUR) helper such as yay or paru.
type Helper struct {
	Name          string   `yaml:"name"`
	InstallArgs   []string `yaml:"install_args"`
	NoConfirmFlag string   `yaml:"no_confirm_flag"`
}

// Settings is the optional tool configuration loaded from YAML.
// Helpers are probed in order; the first one found on PATH is used.
type Settings struct {
	PackageManager PackageManager `yaml:"package_manager"`
	Helpers        []Helper       `yaml:"helpers"`
	Jobs           int            `yaml:"jobs"`
}
