package boards

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/hdlforge/xbt/config"
	"github.com/hdlforge/xbt/log"
	"github.com/hdlforge/xbt/util"
)

// SearchDirs returns the directories searched for board definition files:
// the user-configured board path plus the directory fetched collections are
// cloned into.
func SearchDirs() []string {
	dirs := append([]string{}, config.GetConfig().BoardPath...)
	return append(dirs, path.Join(config.GetConfigDir(), "boards"))
}

// Find locates the definition file for a named board. Files are matched by
// file name, so a board named "arty_a7" lives in "arty_a7.yaml".
func Find(name string) (string, error) {
	fileName := name + ".yaml"
	for _, dir := range SearchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				nested := path.Join(dir, entry.Name(), fileName)
				if util.FileExists(nested) {
					return nested, nil
				}
				continue
			}
			if entry.Name() == fileName {
				return path.Join(dir, entry.Name()), nil
			}
		}
	}
	return "", fmt.Errorf("board %q not found in %s", name, strings.Join(SearchDirs(), ", "))
}

// List parses every board definition found in the search directories.
func List() []*Board {
	boards := []*Board{}
	for _, dir := range SearchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			files := []string{path.Join(dir, entry.Name())}
			if entry.IsDir() {
				files = nil
				nested, err := os.ReadDir(path.Join(dir, entry.Name()))
				if err != nil {
					continue
				}
				for _, file := range nested {
					files = append(files, path.Join(dir, entry.Name(), file.Name()))
				}
			}
			for _, file := range files {
				if !strings.HasSuffix(file, ".yaml") {
					continue
				}
				board, err := Load(file)
				if err != nil {
					log.Warning("Skipping '%s': %s.\n", file, err)
					continue
				}
				boards = append(boards, board)
			}
		}
	}
	return boards
}

// Fetch clones a board definition collection into the boards directory and
// returns the directory it was cloned into.
func Fetch(url string) (string, error) {
	name := strings.TrimSuffix(path.Base(url), ".git")
	dir := path.Join(config.GetConfigDir(), "boards", name)
	if util.DirExists(dir) {
		return "", fmt.Errorf("board collection %q already exists in '%s'", name, dir)
	}

	log.Log("Cloning '%s'.\n", url)
	log.Spinner.Start()
	defer log.Spinner.Stop()

	if _, err := git.PlainClone(dir, false, &git.CloneOptions{URL: url}); err != nil {
		return "", fmt.Errorf("failed to clone board collection: %w", err)
	}
	return dir, nil
}
