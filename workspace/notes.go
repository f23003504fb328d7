package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// NotesFileName is the per-project notes file at the project root.
const NotesFileName = "AIContext.md"

const (
	notesSeparator     = "\n\n---\n\n"
	defaultNotesHeader = "# AI Context for project\n\n"
)

// ErrEmptyNotes is returned when there is nothing to append.
var ErrEmptyNotes = errors.New("no text to append")

// NotesPath returns the notes file location for a project root.
func NotesPath(root string) string {
	return filepath.Join(root, NotesFileName)
}

// EnsureNotes creates the notes file with a header naming the project when
// it does not exist yet. An existing file is left alone.
func EnsureNotes(root, projectName string) (bool, error) {
	path := NotesPath(root)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", NotesFileName, err)
	}
	defer f.Close()

	if _, err := f.WriteString(fmt.Sprintf("# AI Context for %s\n\n", projectName)); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", NotesFileName, err)
	}
	return true, nil
}

// AppendNotes adds text as a new separator-delimited block. Trailing
// whitespace of the existing content is dropped first and the file always
// ends with a single newline.
func AppendNotes(root, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyNotes
	}

	path := NotesPath(root)
	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		existing = []byte(defaultNotesHeader)
	case err != nil:
		return err
	}

	content := strings.TrimRight(string(existing), " \t\r\n") + notesSeparator + text + "\n"
	return os.WriteFile(path, []byte(content), 0644)
}
