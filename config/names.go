package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

// Exit codes reported by [FileError].
const (
	ExitNoInput = 2
	ExitFailure = 1
)

// namePattern matches a Twitch login.
var namePattern = regexp.MustCompile(`^[A-Za-z0-9_]{1,25}$`)

// FileError reports a names or configuration file that could not be read.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ExitCode returns [ExitNoInput] for a missing file and [ExitFailure]
// otherwise.
func (e *FileError) ExitCode() int {
	if errors.Is(e.Err, fs.ErrNotExist) {
		return ExitNoInput
	}
	return ExitFailure
}

// ValidateName reports whether name is a valid channel login: 1 to 25
// ASCII letters, digits or underscores.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("invalid name %q: must be 1-25 letters, digits or underscores", name)
	}
	return nil
}

// LoadNames reads a names file: one name per line. Blank lines and lines
// starting with # are skipped; surrounding whitespace is trimmed.
// Duplicates are returned as they appear.
//
// A file that cannot be read is reported as a [*FileError]. An invalid
// name is reported with its line number.
func LoadNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	names, err := ParseNames(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return names, nil
}

// ParseNames reads names from r using the [LoadNames] format.
func ParseNames(r io.Reader) ([]string, error) {
	var names []string

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		name := strings.TrimSpace(scanner.Text())
		if name == "" || strings.HasPrefix(name, "#") {
			continue
		}
		if err := ValidateName(name); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		names = append(names, name)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(names) == 0 {
		return nil, errors.New("no names found")
	}
	return names, nil
}
