package instructions

import (
	"sort"
	"strings"
)

// ReplaceVariables substitutes every ${key} token found in vars. Tokens
// without a matching key are left as they are.
func ReplaceVariables(text string, vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		text = strings.ReplaceAll(text, "${"+k+"}", vars[k])
	}
	return text
}
