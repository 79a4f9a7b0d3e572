/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package manifest reads view descriptors and the type hierarchy from YAML
// manifests in a directory tree.
//
// A manifest is a file named *.view.yaml or *.view.yml:
//
//	types:
//	  - name: NewsArticle
//	    extends: [Article]
//	  - name: Article
//	    extends: [Content]
//	views:
//	  - path: views/article/detail
//	    model: Article
//	    tags: [DetailView]
//	    default: true
//	    inherited: true
//	  - path: views/news/feed
//	    model: NewsArticle
//	    kind: transform
//	    aux: [Feed, FeedItem]
//	    require_tags: true
//	    tags: [Feed]
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"dirpx.dev/vrx/apis"
)

// Manifest file suffixes.
const (
	SuffixYAML = ".view.yaml"
	SuffixYML  = ".view.yml"
)

var (
	// ErrRead is returned when a manifest cannot be read.
	ErrRead = errors.New("vrx(manifest): failed to read manifest")
	// ErrParse is returned when a manifest is not valid YAML for the schema.
	ErrParse = errors.New("vrx(manifest): failed to parse manifest")
	// ErrInvalidType is returned for a type entry without a name.
	ErrInvalidType = errors.New("vrx(manifest): type entry has no name")
)

// Manifest is the decoded content of one manifest file.
type Manifest struct {
	Types []TypeEntry `yaml:"types"`
	Views []ViewEntry `yaml:"views"`
}

// TypeEntry declares the direct ancestors of a model type, nearest first.
type TypeEntry struct {
	Name    string   `yaml:"name"`
	Extends []string `yaml:"extends"`
}

// ViewEntry declares one view descriptor.
type ViewEntry struct {
	Path        string    `yaml:"path"`
	Model       string    `yaml:"model"`
	Tags        []string  `yaml:"tags,omitempty"`
	Default     bool      `yaml:"default,omitempty"`
	RequireTags bool      `yaml:"require_tags,omitempty"`
	Inherited   bool      `yaml:"inherited,omitempty"`
	Kind        apis.Kind `yaml:"kind,omitempty"`
	Aux         []string  `yaml:"aux,omitempty"`
}

// Descriptor converts e into a descriptor. Validation is left to the registrar.
func (e ViewEntry) Descriptor() *apis.Descriptor {
	return &apis.Descriptor{
		Path:           e.Path,
		ModelType:      apis.TypeName(e.Model),
		Tags:           e.Tags,
		Default:        e.Default,
		RequireTags:    e.RequireTags,
		Inherited:      e.Inherited,
		Kind:           e.Kind,
		AuxiliaryTypes: e.Aux,
	}
}

// Entry converts d back into its manifest form.
func Entry(d *apis.Descriptor) ViewEntry {
	return ViewEntry{
		Path:        d.Path,
		Model:       string(d.ModelType),
		Tags:        d.Tags,
		Default:     d.Default,
		RequireTags: d.RequireTags,
		Inherited:   d.Inherited,
		Kind:        d.Kind,
		Aux:         d.AuxiliaryTypes,
	}
}

// IsManifest reports whether name has a manifest suffix.
func IsManifest(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, SuffixYAML) || strings.HasSuffix(lower, SuffixYML)
}

// Decode reads one manifest from r. Unknown fields are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, zerr.Wrap(err, ErrParse.Error())
	}
	for i, t := range m.Types {
		if strings.TrimSpace(t.Name) == "" {
			return nil, zerr.With(ErrInvalidType, "index", i)
		}
	}
	return &m, nil
}

// ParseFile reads and decodes the manifest at path.
func ParseFile(path string) (*Manifest, error) {
	// #nosec G304 -- path comes from the configured manifest directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrRead.Error()), "file", path)
	}
	m, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, zerr.With(err, "file", path)
	}
	return m, nil
}

// Candidates returns one candidate per view entry, named "<file>#<index>".
func (m *Manifest) Candidates(file string) []apis.Candidate {
	out := make([]apis.Candidate, len(m.Views))
	for i, v := range m.Views {
		out[i] = apis.Candidate{
			Type:       fmt.Sprintf("%s#%d", file, i),
			Descriptor: v.Descriptor(),
		}
	}
	return out
}
