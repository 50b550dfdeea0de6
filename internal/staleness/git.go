package staleness

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// RepoRoot returns the top-level directory of the git work tree containing dir.
func RepoRoot(dir string) (string, error) {
	out, err := gitOutput(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("git rev-parse --show-toplevel: %w", err)
	}
	return filepath.FromSlash(out), nil
}

// HashFiles computes git blob hashes for files, given relative to root. The
// hashes match what git would store, so they survive checkouts and clones.
// Every file must exist.
func HashFiles(root string, files []string) (map[string]string, error) {
	hashes := make(map[string]string, len(files))
	if len(files) == 0 {
		return hashes, nil
	}

	args := []string{"hash-object", "--no-filters", "--"}
	for _, f := range files {
		args = append(args, filepath.Join(root, filepath.FromSlash(f)))
	}
	out, err := gitOutput(root, args...)
	if err != nil {
		return nil, fmt.Errorf("git hash-object: %w", err)
	}

	lines := parseLines(out)
	if len(lines) != len(files) {
		return nil, fmt.Errorf("git hash-object: got %d hashes for %d files", len(lines), len(files))
	}
	for i, f := range files {
		hashes[f] = lines[i]
	}
	return hashes, nil
}

// gitOutput runs a git command in repoDir and returns trimmed stdout.
func gitOutput(repoDir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = repoDir
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(ee.Stderr)))
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// parseLines splits newline-separated git output, dropping blank lines.
func parseLines(output string) []string {
	var result []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			result = append(result, line)
		}
	}
	return result
}
