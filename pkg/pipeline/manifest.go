package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/slidetype/pkg/errors"
	"github.com/matzehuels/slidetype/pkg/style"
)

// Manifest describes a carousel: a base style and the slides that use it.
//
//	{
//	  "style":  {"font_family": "Inter", "font_size_px": 72},
//	  "slides": [
//	    {"background": "bg1.jpg", "title": "Hello", "body": "..."},
//	    {"id": "outro", "background": "bg2.png", "body": "...",
//	     "patch": {"text_color": "#000000"}}
//	  ]
//	}
//
// Fields missing from "style" take their defaults. Relative background
// paths are resolved against the manifest's directory.
type Manifest struct {
	Style  style.TextStyle `json:"style"`
	Slides []SlideSpec     `json:"slides"`

	dir string
}

// SlideSpec is one slide entry of a manifest.
type SlideSpec struct {
	ID         string       `json:"id,omitempty"`
	Background string       `json:"background"`
	Title      string       `json:"title,omitempty"`
	Body       string       `json:"body,omitempty"`
	Patch      *style.Patch `json:"patch,omitempty"`
}

// LoadManifest reads and validates a manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "manifest %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest %s", path)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, err
	}
	m.dir = filepath.Dir(path)
	return m, nil
}

// ParseManifest decodes and validates a manifest. Relative backgrounds are
// resolved against the working directory.
func ParseManifest(data []byte) (*Manifest, error) {
	m := &Manifest{Style: style.Default()}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(m); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode manifest")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the base style, every slide's merged style, and that slide
// IDs are usable as file names and unique.
func (m *Manifest) Validate() error {
	if len(m.Slides) == 0 {
		return errors.New(errors.ErrCodeInvalidManifest, "manifest has no slides")
	}
	if err := m.Style.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "base style")
	}
	seen := make(map[string]bool, len(m.Slides))
	for i, s := range m.Slides {
		id := s.id(i)
		if err := errors.ValidateSlideID(id); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidManifest, err, "slide %d", i+1)
		}
		if seen[id] {
			return errors.New(errors.ErrCodeInvalidManifest, "duplicate slide id %q", id)
		}
		seen[id] = true
		if strings.TrimSpace(s.Background) == "" {
			return errors.New(errors.ErrCodeInvalidManifest, "slide %q has no background", id)
		}
		if s.Patch != nil {
			if err := style.Merge(m.Style, *s.Patch).Validate(); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidManifest, err, "slide %q patch", id)
			}
		}
	}
	return nil
}

// Resolve resolves the manifest into renderable slides. Backgrounds are not
// read here; the runner reads them when each slide renders.
func (m *Manifest) Resolve() []Slide {
	out := make([]Slide, len(m.Slides))
	for i, s := range m.Slides {
		st := m.Style
		if s.Patch != nil {
			st = style.Merge(st, *s.Patch)
		}
		bg := s.Background
		if !filepath.IsAbs(bg) && m.dir != "" {
			bg = filepath.Join(m.dir, bg)
		}
		out[i] = Slide{
			ID:             s.id(i),
			BackgroundPath: bg,
			Title:          s.Title,
			Body:           s.Body,
			Style:          st,
		}
	}
	return out
}

func (s SlideSpec) id(i int) string {
	if s.ID != "" {
		return s.ID
	}
	return fmt.Sprintf("slide-%02d", i+1)
}
