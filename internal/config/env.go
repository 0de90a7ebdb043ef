package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvPrefix is the prefix of variables exposed to the bundle.
const DefaultEnvPrefix = "EXPO_PUBLIC_"

// EnvFiles returns the dotenv files read for mode, lowest precedence first.
func EnvFiles(mode string) []string {
	return []string{".env", ".env.local", ".env." + mode, ".env." + mode + ".local"}
}

// EnvDefines reads the dotenv files next to the manifest plus the process
// environment and returns `process.env.<KEY>` defines for every variable
// matching one of the [env].prefixes. The process environment wins.
func (m *Manifest) EnvDefines(mode string) (map[string]string, error) {
	prefixes := m.Config.Env.Prefixes
	if prefixes == nil {
		prefixes = []string{DefaultEnvPrefix}
	}
	if len(prefixes) == 0 {
		return map[string]string{}, nil
	}

	values := make(map[string]string)
	for _, name := range EnvFiles(mode) {
		path := filepath.Join(m.Root, name)
		vars, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for key, value := range vars {
			values[key] = value
		}
	}
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			if _, fromFile := values[key]; fromFile || hasPrefix(key, prefixes) {
				values[key] = value
			}
		}
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		if hasPrefix(key, prefixes) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	defines := make(map[string]string, len(keys))
	for _, key := range keys {
		defines["process.env."+key] = strconv.Quote(values[key])
	}
	return defines, nil
}

func hasPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
