// Package envx reads .env files into the process environment.
package envx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// LoadDotEnvIfPresent loads KEY=VALUE pairs from filePath into process env.
// Existing environment variables are preserved.
func LoadDotEnvIfPresent(filePath string) error {
	return loadDotEnv(filePath, false)
}

// LoadDotEnvOverrideIfPresent loads .env and overwrites already-set env vars.
func LoadDotEnvOverrideIfPresent(filePath string) error {
	return loadDotEnv(filePath, true)
}

func loadDotEnv(filePath string, overwrite bool) error {
	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	pairs, err := Parse(f)
	if err != nil {
		return fmt.Errorf("%s: %w", filePath, err)
	}
	for _, kv := range pairs {
		if !overwrite {
			if _, exists := os.LookupEnv(kv[0]); exists {
				continue
			}
		}
		if err := os.Setenv(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}

// Parse returns the KEY=VALUE pairs of a dotenv document in file order.
// Blank lines, comments and lines without '=' are skipped; an "export "
// prefix is allowed. Values may be single or double quoted; unquoted values
// end at " #".
func Parse(r io.Reader) ([][2]string, error) {
	var out [][2]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		out = append(out, [2]string{key, parseValue(strings.TrimSpace(val))})
	}
	return out, scanner.Err()
}

func parseValue(val string) string {
	if len(val) >= 2 {
		q := val[0]
		if (q == '"' || q == '\'') && val[len(val)-1] == q {
			return val[1 : len(val)-1]
		}
	}
	if i := strings.Index(val, " #"); i >= 0 {
		val = strings.TrimSpace(val[:i])
	}
	return val
}
