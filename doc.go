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

// Package vrx resolves view descriptors: given a model type and a tag
// query, it picks the one view that should render the model.
//
// A view descriptor (apis.Descriptor) names a view artifact by path and
// says which model type it renders, which tags it applies to and how it
// competes with other views: whether it is the default for its type,
// whether it only applies when the query shares one of its tags, and
// whether subtypes of its model type may use it.
//
// # Design
//
// A Service owns four collaborators that share one lock:
//
//   - Registry: every known descriptor, keyed by case-insensitive path and
//     always iterated in path order.
//
//   - Cache: memoized resolutions keyed by the queried type and the tag
//     sequence. Only successful resolutions are stored.
//
//   - Registrar: the only writer. Register adds or replaces a single
//     descriptor and evicts the cache entries of its model type; Rebuild
//     scans the apis.Source and repopulates everything.
//
//   - Resolver: runs the tier chain (see package tier) on a cache miss.
//     Tiers are evaluated in order and the first one to pick a descriptor
//     wins:
//
//     1. required-exact: tag matches requiring tags, exact type.
//     2. required-inherited: the same for ancestors, nearest first.
//     3. optional-exact: tag matches not requiring tags, by path.
//     4. optional-inherited: the same for ancestors.
//     5. default: defaults, exact type first, then nearest ancestor.
//     6. fallback: anything not requiring tags.
//
// Ancestry comes from apis.Hierarchy implementations composed in order:
// the one passed with WithHierarchy, the source (when it declares types,
// like the manifest source) and finally the hierarchy learned from Go
// struct embedding of the values passed to Resolve.
//
// # Lifecycle
//
// The registry is built from the source lazily, on the first resolution,
// registration or DescriptorsFor. Rebuild(true) rescans on demand; a
// scan error keeps the previous registry. Registrations that arrive while
// a rebuild is in flight are dropped and reported as not added.
//
// Reconfigure swaps the cache policy at runtime: registered descriptors
// are migrated, the cache starts empty. Close releases everything; a
// closed Service resolves nothing but still runs override hooks.
//
// # Override hooks
//
// Every resolution accepts an apis.OverrideFunc. It receives the resolved
// descriptor (or nil) and returns the one to use. Hooks run on every call,
// cache hits included, and their result is never cached.
//
// # Usage
//
//	src := viewtype.New(nil, nil).Add(ArticleDetail{}, ArticleList{})
//	svc := vrx.New(vrx.WithSource(src), vrx.WithLogger(log))
//	defer svc.Close()
//
//	d := svc.Resolve(&article, []string{tags.ListView}, nil)
//	if d == nil {
//	    // no view for this item
//	}
//
// A process-wide Service is available through Default and the package
// level helpers (Resolve, Register, Rebuild, DescriptorsFor); tests should
// construct their own with New.
//
// # Concurrency model
//
// All operations are safe for concurrent use. Resolutions read the cache
// without locking and compute under a shared read lock; registrations and
// rebuilds take the write lock, so a replace and its cache eviction are
// observed atomically. A resolution racing with a replace may still
// return the previous descriptor once.
package vrx
