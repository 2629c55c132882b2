package services

import (
	"strings"

	"github.com/drujensen/deskimager/internal/domain/entities"
)

// SearchByLabels returns every file with a label containing any of the comma-separated
// terms in query. Matching is case-insensitive.
func SearchByLabels(dirs []entities.Directory, query string) []entities.ImageRef {
	var terms []string
	for _, t := range strings.Split(query, ",") {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return nil
	}

	var found []entities.ImageRef
	for _, dir := range dirs {
		for _, f := range dir.Files {
			if labelsMatch(f.Labels, terms) {
				found = append(found, f.Ref())
			}
		}
	}
	return found
}

func labelsMatch(labels, terms []string) bool {
	for _, label := range labels {
		label = strings.ToLower(label)
		for _, term := range terms {
			if strings.Contains(label, term) {
				return true
			}
		}
	}
	return false
}
