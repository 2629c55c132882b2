package entities

import (
	"path/filepath"
	"slices"
	"strings"
)

// ImageFile is one image inside a tracked directory and the labels assigned to it.
type ImageFile struct {
	Path   string   `json:"path" bson:"path"`
	Labels []string `json:"labels" bson:"labels"`
}

func (f *ImageFile) IsLabeled() bool {
	return len(f.Labels) > 0
}

func (f *ImageFile) Ref() ImageRef {
	return NewImageRef(f.Path)
}

// Directory is a user-chosen root and the image files found beneath it.
type Directory struct {
	Path  string      `json:"path" bson:"path"`
	Files []ImageFile `json:"files" bson:"files"`
}

// LabeledCount is computed from Files on every call.
func (d *Directory) LabeledCount() int {
	n := 0
	for i := range d.Files {
		if d.Files[i].IsLabeled() {
			n++
		}
	}
	return n
}

func (d *Directory) File(path string) *ImageFile {
	for i := range d.Files {
		if d.Files[i].Path == path {
			return &d.Files[i]
		}
	}
	return nil
}

// Contains reports whether path lies inside the directory tree.
func (d *Directory) Contains(path string) bool {
	rel, err := filepath.Rel(d.Path, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Merge replaces the file list with paths while keeping labels already known for
// paths that survive.
func (d *Directory) Merge(paths []string) {
	files := make([]ImageFile, 0, len(paths))
	for _, p := range paths {
		if existing := d.File(p); existing != nil {
			files = append(files, existing.Clone())
			continue
		}
		files = append(files, ImageFile{Path: p})
	}
	d.Files = files
}

// Add appends paths that are not tracked yet.
func (d *Directory) Add(paths ...string) {
	for _, p := range paths {
		if d.File(p) == nil {
			d.Files = append(d.Files, ImageFile{Path: p})
		}
	}
}

func (d *Directory) Remove(paths ...string) {
	d.Files = slices.DeleteFunc(d.Files, func(f ImageFile) bool {
		return slices.Contains(paths, f.Path)
	})
}

func (f ImageFile) Clone() ImageFile {
	return ImageFile{Path: f.Path, Labels: slices.Clone(f.Labels)}
}

func (d Directory) Clone() Directory {
	files := make([]ImageFile, len(d.Files))
	for i, f := range d.Files {
		files[i] = f.Clone()
	}
	return Directory{Path: d.Path, Files: files}
}

// CloneDirectories deep copies dirs.
func CloneDirectories(dirs []Directory) []Directory {
	if dirs == nil {
		return nil
	}
	out := make([]Directory, len(dirs))
	for i, d := range dirs {
		out[i] = d.Clone()
	}
	return out
}
