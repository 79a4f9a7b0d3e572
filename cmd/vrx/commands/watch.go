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
	"strings"

	"github.com/spf13/cobra"

	"dirpx.dev/vrx/watch"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch the manifest directory and apply changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := watch.New(watch.Config{
				Debounce: c.file.Views.Debounce,
				Logger:   c.log.WithName("watch"),
			}, c.svc, c.src)
			if err != nil {
				return err
			}
			events, err := w.Start()
			if err != nil {
				_ = w.Stop()
				return err
			}
			defer func() { _ = w.Stop() }()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Watching %s\n", c.src.Dir())
			for {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev := <-events:
					if ev.Err != nil {
						_, _ = fmt.Fprintf(out, "Reload of %s failed: %v\n", strings.Join(ev.Files, ", "), ev.Err)
						continue
					}
					_, _ = fmt.Fprintf(out, "Reloaded %s (rebuilt: %t, added: %d, descriptors: %d)\n",
						strings.Join(ev.Files, ", "), ev.Rebuilt, ev.Added, len(c.svc.Info().Descriptors))
				}
			}
		},
	}
}
