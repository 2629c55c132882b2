package agents

import (
	"strings"
)

// IsAffirmative reports whether a model answer means yes. Any answer containing "yes" or
// "true" in any case counts.
func IsAffirmative(answer string) bool {
	a := strings.ToLower(answer)
	return strings.Contains(a, "yes") || strings.Contains(a, "true")
}

// ParseLabels splits a comma separated label answer into trimmed, non-empty, unique labels.
func ParseLabels(answer string) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(answer, ",") {
		label := strings.TrimSpace(part)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}
