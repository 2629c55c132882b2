package entities

import (
	"image"
	"path/filepath"
	"strings"
)

// ImageRef identifies an image file by path, base name and extension.
type ImageRef struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Extension string `json:"extension"`
}

func NewImageRef(path string) ImageRef {
	base := filepath.Base(path)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	return ImageRef{
		Path:      path,
		Name:      strings.TrimSuffix(base, "."+ext),
		Extension: ext,
	}
}

// Thumbnail is a decoded, size-bounded preview of an image file. Image is never mutated
// after creation so it can be shared between components.
type Thumbnail struct {
	Path  string
	Image image.Image
}

// FoundImagesSource tells where a FoundImages result came from.
type FoundImagesSource int

const (
	FoundByTools FoundImagesSource = iota
	FoundByVision
	FoundByLabels
)

func (s FoundImagesSource) String() string {
	switch s {
	case FoundByTools:
		return "tools"
	case FoundByVision:
		return "vision"
	case FoundByLabels:
		return "labels"
	default:
		return "unknown"
	}
}
