package inference

import (
	"os"
	"strings"

	"golang.org/x/xerrors"
)

// LoadLabels reads a names file with one class label per line. Line i is class i.
func LoadLabels(path string) (map[int]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading labels %s: %w", path, err)
	}

	labels := map[int]string{}
	for i, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		label := strings.TrimSpace(line)
		if label == "" {
			return nil, xerrors.Errorf("labels %s: empty label on line %d", path, i+1)
		}
		labels[i] = label
	}

	if len(labels) == 0 {
		return nil, xerrors.Errorf("labels %s: no labels", path)
	}

	return labels, nil
}
