package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadSettingsDefaults(t *testing.T) {
	st, err := LoadSettings("")
	require.NoError(t, err)
	require.Equal(t, DefaultSettings(), st)
	require.Equal(t, "pacman", st.PackageManager.Command)
	require.Equal(t, []string{"yay", "paru"}, st.HelperNames())
	require.NoError(t, st.Validate())
}

func TestLoadSettingsPartialOverride(t *testing.T) {
	path := writeSettings(t, `
package_manager:
  sudo: false
helpers:
  - name: paru
  - name: pikaur
    install_args: ["-S"]
    no_confirm_flag: "--noconfirm"
jobs: 8
`)
	st, err := LoadSettings(path)
	require.NoError(t, err)

	require.False(t, st.PackageManager.Sudo)
	require.Equal(t, "pacman", st.PackageManager.Command)
	require.Equal(t, []string{"-Q"}, st.PackageManager.InstalledArgs)
	require.Equal(t, []string{"-S", "--needed"}, st.PackageManager.InstallArgs)

	require.Equal(t, []string{"paru", "pikaur"}, st.HelperNames())
	paru, ok := st.Helper("paru")
	require.True(t, ok)
	require.Equal(t, []string{"-S", "--needed"}, paru.InstallArgs)
	require.Equal(t, "--noconfirm", paru.NoConfirmFlag)
	pikaur, ok := st.Helper("pikaur")
	require.True(t, ok)
	require.Equal(t, []string{"-S"}, pikaur.InstallArgs)

	_, ok = st.Helper("yay")
	require.False(t, ok)
	require.Equal(t, 8, st.Jobs)
}

func TestLoadSettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "bad yaml", body: "package_manager: [unclosed"},
		{name: "empty command", body: "package_manager:\n  command: \"\"\n"},
		{name: "empty installed args", body: "package_manager:\n  installed_args: []\n"},
		{name: "helper without name", body: "helpers:\n  - install_args: [\"-S\"]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeSettings(t, tt.body))
			require.Error(t, err)
		})
	}

	_, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSettingsJobsFloor(t *testing.T) {
	st, err := LoadSettings(writeSettings(t, "jobs: 0\n"))
	require.NoError(t, err)
	require.Equal(t, 1, st.Jobs)
}
