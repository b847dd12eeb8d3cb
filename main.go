package main

import (
	"setup-packages/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// The setup-packages project provisions an Arch Linux machine from a package manifest:
//   - Reads a JSON manifest mapping category names to lists of package names
//   - Classifies every selected package as already installed, installable from the
//     official repositories, installable from the AUR through a helper (yay/paru),
//     or unresolvable
//   - Installs each installable bucket with a single batched pacman or helper call
//
// Error handling strategy:
//   - Manifest-level and environment-level problems (missing file, malformed JSON,
//     no pacman on PATH) abort the run with exit code 1
//   - Package-level problems (unknown categories, unresolvable packages) are logged
//     and reported at the end without failing the run
func main() {
	cmd.Execute()
}
