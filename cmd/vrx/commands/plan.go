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

	"github.com/spf13/cobra"

	"dirpx.dev/vrx/render"
)

// modelItem stands in for a model value of the named type.
type modelItem string

// ModelTypeName implements apis.Namer.
func (m modelItem) ModelTypeName() string { return string(m) }

// DebugText implements apis.Describer.
func (m modelItem) DebugText() string { return "[" + string(m) + "]" }

func (c *CLI) newPlanCmd() *cobra.Command {
	var (
		types       []string
		tagStr      string
		requireTags bool
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show which view each item of a list would render with",
		Long: `Plan the rendering of a list of items, one per --type, and print the
debug report: the tag query, the descriptor chosen for each item and why
an item would be skipped.

Examples:
  vrx plan --type Article --type NewsArticle --tags ListView
  vrx plan --type Article --tags Sidebar --require-tags`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items := make([]any, len(types))
			for i, t := range types {
				items[i] = modelItem(t)
			}
			plan := render.NewPlanner(c.svc).Plan(cmd.Context(), items, render.Request{
				TagString:   tagStr,
				RequireTags: requireTags,
			})
			_, err := fmt.Fprint(cmd.OutOrStdout(), render.DebugReport(plan, len(plan.Renderable())))
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&types, "type", "t", nil, "model type of one item (repeatable)")
	cmd.Flags().StringVar(&tagStr, "tags", "", "query tags separated by ',' or ';'")
	cmd.Flags().BoolVar(&requireTags, "require-tags", false, "skip items whose view shares no tag with the query")
	return cmd
}

func (c *CLI) newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the registry generation and size",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := c.svc.Info()
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Directory: %s\n", c.src.Dir())
			_, _ = fmt.Fprintf(out, "Generation: %s\n", info.Generation)
			_, _ = fmt.Fprintf(out, "Built: %s\n", info.Built.Format("2006-01-02T15:04:05Z07:00"))
			_, _ = fmt.Fprintf(out, "Descriptors: %d\n", len(info.Descriptors))
			_, _ = fmt.Fprintf(out, "Cache policy: %s\n", c.svc.Config().CachePolicy)
			return nil
		},
	}
}
