package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"
)

// EnvDelimiter separates levels in environment variable names.
const EnvDelimiter = "__"

// AddDotEnv adds the variables of dotenv files without touching the process
// environment. With optional set, missing files are skipped.
func (b *Builder) AddDotEnv(optional bool, files ...string) *Builder {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		b.add(func(root *node) error {
			vars, err := godotenv.Read(file)
			if err != nil {
				if optional && errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return fmt.Errorf("failed to read dotenv file %s: %w", file, err)
			}
			mergeEnv(root, vars, "")
			return nil
		})
	}

	return b
}

// AddEnv adds the process environment. Only variables starting with prefix
// are used, with the prefix removed; the match ignores case.
func (b *Builder) AddEnv(prefix string) *Builder {
	return b.add(func(root *node) error {
		vars := make(map[string]string)
		for _, kv := range os.Environ() {
			k, v, ok := strings.Cut(kv, "=")
			if ok {
				vars[k] = v
			}
		}
		mergeEnv(root, vars, prefix)
		return nil
	})
}

// mergeEnv applies vars in sorted name order, so when two names differ only
// in case the later one in that order sets the value and the first one keeps
// its spelling.
func mergeEnv(root *node, vars map[string]string, prefix string) {
	up := strings.ToUpper(prefix)
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		v := vars[k]
		if prefix != "" {
			if !strings.HasPrefix(strings.ToUpper(k), up) {
				continue
			}
			k = k[len(prefix):]
		}
		if k == "" {
			continue
		}
		root.set(strings.Split(k, EnvDelimiter), v)
	}
}
