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

package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"dirpx.dev/vrx/apis"
	"dirpx.dev/vrx/source/manifest"
	"dirpx.dev/vrx/tags"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	var (
		typ       string
		tagList   []string
		tagStr    string
		ancestors bool
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the view descriptor for a model type",
		Long: `Resolve the best view descriptor for a model type and tag query and print
it as a manifest view entry.

Examples:
  # Resolve without tags
  vrx resolve --type Article

  # Tags are matched in the order given
  vrx resolve --type NewsArticle --tag ListView --tag Sidebar
  vrx resolve --type NewsArticle --tags "ListView;Sidebar"

  # Show the ancestry used for inherited views
  vrx resolve --type NewsArticle --ancestors`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := tagList
			if tagStr != "" {
				q = tags.Parse(tagStr)
			}
			t := apis.TypeName(typ)
			d := c.svc.ResolveTypeContext(cmd.Context(), t, q, nil, nil)
			out := cmd.OutOrStdout()
			if ancestors {
				chain := make([]string, 0, len(c.svc.Ancestors(t)))
				for _, a := range c.svc.Ancestors(t) {
					chain = append(chain, string(a))
				}
				_, _ = fmt.Fprintf(out, "# ancestors: %s\n", strings.Join(chain, ", "))
			}
			if d == nil {
				_, _ = fmt.Fprintf(out, "no descriptor for %s\n", typ)
				return nil
			}
			return writeYAML(out, manifest.Entry(d))
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "model type to resolve")
	cmd.Flags().StringArrayVar(&tagList, "tag", nil, "query tag (repeatable, order matters)")
	cmd.Flags().StringVar(&tagStr, "tags", "", "query tags separated by ',' or ';' (overrides --tag)")
	cmd.Flags().BoolVar(&ancestors, "ancestors", false, "print the ancestor chain of the type first")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func (c *CLI) newListCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered view descriptors",
		Long: `List registered view descriptors ordered by path.

Use --type to list only the descriptors declared exactly for a model type.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var ds []*apis.Descriptor
			if typ != "" {
				for d := range c.svc.DescriptorsFor(apis.TypeName(typ)) {
					ds = append(ds, d)
				}
			} else {
				ds = c.svc.Info().Descriptors
			}
			entries := make([]manifest.ViewEntry, len(ds))
			for i, d := range ds {
				entries[i] = manifest.Entry(d)
			}
			return writeYAML(cmd.OutOrStdout(), manifest.Manifest{Views: entries})
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "only list descriptors for this model type")
	return cmd
}

func (c *CLI) newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the well-known tags and the tags used by registered views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var used []string
			for _, d := range c.svc.Info().Descriptors {
				used = append(used, d.Tags...)
			}
			out := cmd.OutOrStdout()
			for _, t := range tags.All(used...) {
				_, _ = fmt.Fprintln(out, t)
			}
			return nil
		},
	}
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return enc.Close()
}
