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

package apis

// Query is the input of a Tier: the queried type and tags plus the views of
// the registry every tier works from.
type Query struct {
	// Type is the queried model type.
	Type TypeName
	// Tags is the query tag sequence as supplied. Never nil.
	Tags []string
	// Descriptors is the registry snapshot, ascending by path.
	Descriptors []*Descriptor
	// BaseTypes are the ancestors of Type that have descriptors, nearest first.
	BaseTypes []TypeName
	// Matches are the descriptors sharing at least one tag with Tags, ranked
	// by overlap (descending) then Default (descending). Empty when Tags is.
	Matches []*Descriptor
}

// Tier is one precedence level of the resolution ranking. A Resolver runs
// tiers in order until one of them handles the query.
type Tier interface {
	// Name identifies the tier in logs, traces and metrics.
	Name() string
	// TryResolve returns (d, true) if the tier picked d; otherwise (nil, false)
	// to fall through to the next tier.
	TryResolve(q *Query) (d *Descriptor, handled bool)
}
