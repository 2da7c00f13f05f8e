package entry

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Walk traverses exactly three directory levels below root
// (volume/issue/article) and calls fn once per article directory, in
// lexicographic directory order. Files at intermediate levels and
// directories at the wrong depth are ignored. Article directories with no
// contents at all are skipped. Walk holds no state between calls and is
// safe to re-run after an interrupted import; idempotence for articles
// that already exist in the store is handled downstream.
func Walk(root string, fn func(*Entry) error) error {
	volumes, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("reading import root: %w", err)
	}

	for _, vol := range volumes {
		if !vol.IsDir() {
			continue
		}
		volumeDir := filepath.Join(root, vol.Name())
		volume, _ := strconv.Atoi(vol.Name())

		issues, err := os.ReadDir(volumeDir)
		if err != nil {
			return fmt.Errorf("reading volume directory %s: %w", volumeDir, err)
		}
		for _, iss := range issues {
			if !iss.IsDir() {
				continue
			}
			issueDir := filepath.Join(volumeDir, iss.Name())

			articles, err := os.ReadDir(issueDir)
			if err != nil {
				return fmt.Errorf("reading issue directory %s: %w", issueDir, err)
			}
			for _, art := range articles {
				if !art.IsDir() {
					continue
				}
				articleDir := filepath.Join(issueDir, art.Name())
				empty, err := isEmptyDir(articleDir)
				if err != nil {
					return err
				}
				if empty {
					continue
				}

				e := &Entry{
					Volume:      volume,
					VolumeLabel: vol.Name(),
					Issue:       iss.Name(),
					Article:     art.Name(),
					dir:         articleDir,
					issueDir:    issueDir,
				}
				if err := fn(e); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, fmt.Errorf("reading article directory %s: %w", dir, err)
	}
	return len(entries) == 0, nil
}
