package services

import (
	"testing"

	"github.com/drujensen/deskimager/internal/domain/entities"

	"github.com/stretchr/testify/assert"
)

func TestSearchByLabels(t *testing.T) {
	dirs := []entities.Directory{
		{Path: "/a", Files: []entities.ImageFile{
			{Path: "/a/cat.png", Labels: []string{"Black Cat", "sofa"}},
			{Path: "/a/car.jpg", Labels: []string{"red car"}},
		}},
		{Path: "/b", Files: []entities.ImageFile{
			{Path: "/b/tree.png", Labels: []string{"tree"}},
			{Path: "/b/none.png"},
		}},
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"cat", []string{"/a/cat.png"}},
		{"CAR, tree", []string{"/a/car.jpg", "/b/tree.png"}},
		{"  ,  ", nil},
		{"ca", []string{"/a/cat.png", "/a/car.jpg"}},
		{"boat", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, ref := range SearchByLabels(dirs, tt.query) {
				got = append(got, ref.Path)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
