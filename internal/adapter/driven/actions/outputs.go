package actions

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// output is one step output, written in the multiline-safe heredoc form.
type output struct {
	name  string
	value string
}

// appendOutputs appends name/value pairs to a $GITHUB_OUTPUT style file.
func appendOutputs(path string, outputs []output) error {
	var b strings.Builder
	for _, o := range outputs {
		delim, err := heredocDelimiter(o.value)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "%s<<%s\n%s\n%s\n", o.name, delim, o.value, delim)
	}
	return appendFile(path, b.String())
}

// heredocDelimiter returns a random delimiter that does not occur in value.
func heredocDelimiter(value string) (string, error) {
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generating output delimiter: %w", err)
		}
		delim := "ghadelimiter_" + hex.EncodeToString(buf)
		if !strings.Contains(value, delim) {
			return delim, nil
		}
	}
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
