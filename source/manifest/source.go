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

package manifest

import (
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"go.trai.ch/zerr"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/typeinfo"
)

// Source is an apis.Source and apis.Hierarchy over a manifest directory.
// Each Scan rebuilds the hierarchy from the manifests it read.
type Source struct {
	dir  string
	hier atomic.Pointer[typeinfo.Hierarchy]
}

var (
	_ apis.Source    = (*Source)(nil)
	_ apis.Hierarchy = (*Source)(nil)
)

// New creates a Source reading manifests below dir.
func New(dir string) *Source {
	s := &Source{dir: dir}
	s.hier.Store(typeinfo.NewHierarchy(nil))
	return s
}

// Dir returns the manifest directory.
func (s *Source) Dir() string { return s.dir }

// Scan walks the directory in lexical order and returns the candidates of
// every manifest. Any unreadable or malformed manifest fails the scan.
func (s *Source) Scan() ([]apis.Candidate, error) {
	var out []apis.Candidate
	h := typeinfo.NewHierarchy(nil)
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsManifest(d.Name()) {
			return nil
		}
		m, err := ParseFile(path)
		if err != nil {
			return err
		}
		declare(h, m)
		out = append(out, m.Candidates(s.rel(path))...)
		return nil
	})
	if err != nil {
		return nil, zerr.With(err, "dir", s.dir)
	}
	s.hier.Store(h)
	return out, nil
}

// Load parses the single manifest at path, merges its types into the
// current hierarchy and returns its candidates. declaresTypes reports
// whether the manifest has a types section, in which case ancestry may have
// changed for types outside the manifest.
func (s *Source) Load(path string) (cands []apis.Candidate, declaresTypes bool, err error) {
	m, err := ParseFile(path)
	if err != nil {
		return nil, false, err
	}
	declare(s.hier.Load(), m)
	return m.Candidates(s.rel(path)), len(m.Types) > 0, nil
}

// AncestorChain implements apis.Hierarchy over the types of the last scan.
func (s *Source) AncestorChain(t apis.TypeName) []apis.TypeName {
	return s.hier.Load().AncestorChain(t)
}

func (s *Source) rel(path string) string {
	if r, err := filepath.Rel(s.dir, path); err == nil {
		return filepath.ToSlash(r)
	}
	return path
}

func declare(h *typeinfo.Hierarchy, m *Manifest) {
	for _, t := range m.Types {
		parents := make([]apis.TypeName, len(t.Extends))
		for i, p := range t.Extends {
			parents[i] = apis.TypeName(p)
		}
		h.Declare(apis.TypeName(t.Name), parents...)
	}
}
