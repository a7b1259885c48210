// text.go - Text file loading, one catalog item per non-blank line.
package ingest

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadTextLines reads path and returns its non-blank lines, trimmed.
func LoadTextLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open text: %w", err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read text %s: %w", path, err)
	}
	return lines, nil
}
