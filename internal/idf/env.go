package idf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// buildEnv returns the process environment with the variables from envFile
// layered on top. An empty envFile leaves the environment untouched.
func buildEnv(base []string, envFile string) ([]string, error) {
	if envFile == "" {
		return base, nil
	}

	vars, err := godotenv.Read(envFile)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", envFile, err)
	}

	result := make([]string, 0, len(base)+len(vars))
	for _, e := range base {
		name, _, _ := strings.Cut(e, "=")
		if _, override := vars[name]; override {
			continue
		}
		result = append(result, e)
	}

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		result = append(result, name+"="+vars[name])
	}
	return result, nil
}
