package util

import (
	"os"
	"path"

	"github.com/hdlforge/xbt/log"
)

// FileMode is the default FileMode used when creating files.
const FileMode = 0664

// DirMode is the default FileMode used when creating directories.
const DirMode = 0775

// FileExists checks whether some file exists.
func FileExists(file string) bool {
	stat, err := os.Stat(file)
	return err == nil && !stat.IsDir()
}

// DirExists checks whether some directory exists.
func DirExists(dir string) bool {
	stat, err := os.Stat(dir)
	return err == nil && stat.IsDir()
}

// ReadFile returns the content of the file or aborts on failure.
func ReadFile(filePath string) []byte {
	data, err := os.ReadFile(filePath)
	if err != nil {
		log.Fatal("Failed to read file '%s': %s.\n", filePath, err)
	}
	return data
}

// WriteFile writes data to the given file, creating parent directories as needed.
func WriteFile(filePath string, data []byte) error {
	if err := os.MkdirAll(path.Dir(filePath), DirMode); err != nil {
		return err
	}
	return os.WriteFile(filePath, data, FileMode)
}
