package driver

import (
	"fmt"
	"os"
	"strings"
)

// ExpandListFile reads a file of paths, one per line, skipping blank lines.
// Entries are returned in file order without deduplication, matching
// clang-format's --files behavior.
func ExpandListFile(listfile string) ([]string, error) {
	content, err := os.ReadFile(listfile)
	if err != nil {
		return nil, fmt.Errorf("failed to read --files list %q: %w", listfile, err)
	}
	var out []string
	for _, line := range strings.Split(string(content), "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}
