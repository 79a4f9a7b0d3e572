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

package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"dirpx.dev/vrx/cmd/vrx/commands"
	"dirpx.dev/vrx/source/manifest"
)

const siteManifest = `
types:
  - name: Article
    extends: [Content]
  - name: NewsArticle
    extends: [Article]
views:
  - path: a
    model: Article
    default: true
  - path: b
    model: Article
    tags: [List]
    require_tags: true
  - path: c
    model: Content
    tags: [List, Sidebar]
    default: true
    require_tags: true
    inherited: true
    kind: transform
`

func manifestDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.view.yaml"), []byte(siteManifest), 0o600))
	return dir
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()
	cli := commands.New()
	cli.SetArgs(args)
	var out bytes.Buffer
	cli.SetOutput(&out, new(bytes.Buffer))
	err := cli.Execute(ctx)
	return out.String(), err
}

func TestCommands_Resolve(t *testing.T) {
	dir := manifestDir(t)

	t.Run("prints the resolved entry", func(t *testing.T) {
		out, err := execute(t, context.Background(), "resolve", "--dir", dir, "--type", "NewsArticle", "--tag", "List")
		require.NoError(t, err)

		var got manifest.ViewEntry
		require.NoError(t, yaml.Unmarshal([]byte(out), &got))
		assert.Equal(t, "c", got.Path)
		assert.Equal(t, "Content", got.Model)
		assert.Equal(t, "transform", got.Kind.String())
		assert.True(t, got.Inherited)
	})

	t.Run("tag string overrides tags", func(t *testing.T) {
		out, err := execute(t, context.Background(), "resolve", "-d", dir, "-t", "Article", "--tag", "Other", "--tags", "Card; List")
		require.NoError(t, err)
		assert.Contains(t, out, "path: b")
	})

	t.Run("prints ancestors first", func(t *testing.T) {
		out, err := execute(t, context.Background(), "resolve", "--dir", dir, "--type", "NewsArticle", "--tag", "List", "--ancestors")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "# ancestors: Article, Content\n"), out)
		assert.Contains(t, out, "path: c")
	})

	t.Run("reports misses", func(t *testing.T) {
		out, err := execute(t, context.Background(), "resolve", "--dir", dir, "--type", "Page")
		require.NoError(t, err)
		assert.Equal(t, "no descriptor for Page\n", out)
	})

	t.Run("requires a type", func(t *testing.T) {
		_, err := execute(t, context.Background(), "resolve", "--dir", dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "type")
	})

	t.Run("fails on a missing directory", func(t *testing.T) {
		_, err := execute(t, context.Background(), "resolve", "--dir", filepath.Join(dir, "missing"), "--type", "Page")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading manifests")
	})
}

func TestCommands_List(t *testing.T) {
	dir := manifestDir(t)

	out, err := execute(t, context.Background(), "list", "--dir", dir)
	require.NoError(t, err)
	var m manifest.Manifest
	require.NoError(t, yaml.Unmarshal([]byte(out), &m))
	require.Len(t, m.Views, 3)
	assert.Equal(t, "a", m.Views[0].Path)

	out, err = execute(t, context.Background(), "list", "--dir", dir, "--type", "Content")
	require.NoError(t, err)
	m = manifest.Manifest{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &m))
	require.Len(t, m.Views, 1)
	assert.Equal(t, "c", m.Views[0].Path)
}

func TestCommands_Tags(t *testing.T) {
	out, err := execute(t, context.Background(), "tags", "--dir", manifestDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "List\n")
	assert.Contains(t, out, "ListView\n")
	assert.Contains(t, out, "Sidebar\n")
}

func TestCommands_Plan(t *testing.T) {
	out, err := execute(t, context.Background(), "plan", "--dir", manifestDir(t),
		"--type", "Article", "--type", "Page", "--tags", "List", "--require-tags")
	require.NoError(t, err)
	assert.Contains(t, out, "Tags: List\n")
	assert.Contains(t, out, "Tags required: yes\n")
	assert.Contains(t, out, "1 items rendered of 2\n")
	assert.Contains(t, out, "[Article] ")
	assert.Contains(t, out, "Path: b")
	assert.Contains(t, out, "[Page] ")
}

func TestCommands_Info(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "vrx.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("cache:\n  policy: none\n"), 0o600))

	out, err := execute(t, context.Background(), "info", "--config", cfg, "--dir", manifestDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Descriptors: 3\n")
	assert.Contains(t, out, "Cache policy: none\n")
	assert.Regexp(t, `Generation: [0-9a-f-]{36}\n`, out)
}

func TestCommands_Watch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	out, err := execute(t, ctx, "watch", "--dir", manifestDir(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Watching ")
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, context.Background(), "--version")
	require.NoError(t, err)
	assert.Contains(t, out, commands.Version)
}
