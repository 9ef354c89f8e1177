package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/blogbuilder/cmd/blogbuilder/commands"
	ferrors "git.home.luguber.info/inful/blogbuilder/internal/foundation/errors"
)

var siteFiles = map[string]string{
	"articles/first-post.md":  "//- title: First Post\n//- date: 2020/01/01\n//- tags: intro\nHello.\n",
	"articles/second-post.md": "//- date: 2020-02-01\nAgain.\n",
	"templates/article.html":  `<h1>{{ .Record.Title }}</h1>{{ .Record.Body }}<a rel="next" href="{{ .Record.NextLink }}"></a>`,
	"templates/page.html":     `{{ range .Page.Records }}<a href="{{ .Link }}">{{ .Title }}</a>{{ end }}`,
	"templates/index.html":    `{{ range .Page.Records }}{{ .Link }};{{ end }}`,
}

type cliEnv struct {
	dir    string
	config string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newCLIEnv(t *testing.T, files map[string]string) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return &cliEnv{dir: dir, config: filepath.Join(dir, "blog.yaml")}
}

func (e *cliEnv) run(args ...string) error {
	e.stdout.Reset()
	e.stderr.Reset()
	var cli commands.CLI
	full := append([]string{"--config", e.config}, args...)
	return run(context.Background(), &cli, full, &e.stdout, &e.stderr, kong.Exit(func(int) {}))
}

func TestCLI_InitThenBuild(t *testing.T) {
	env := newCLIEnv(t, siteFiles)

	require.NoError(t, env.run("init"))
	assert.Contains(t, env.stdout.String(), "Wrote articles configuration to "+env.config)
	require.FileExists(t, env.config)

	require.NoError(t, env.run("build"))
	assert.Contains(t, env.stdout.String(), "Built 2 documents and 1 pages into "+filepath.Join(env.dir, "public"))

	index, err := os.ReadFile(filepath.Join(env.dir, "public", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "/articles/second-post;/articles/first-post;", string(index))

	first, err := os.ReadFile(filepath.Join(env.dir, "public", "articles", "first-post.html"))
	require.NoError(t, err)
	assert.Contains(t, string(first), `<a rel="next" href="/articles/second-post">`)
	assert.FileExists(t, filepath.Join(env.dir, "public", "pages", "0.html"))
	assert.FileExists(t, filepath.Join(env.dir, "public", "feed.xml"))
}

func TestCLI_InitRefusesToOverwrite(t *testing.T) {
	env := newCLIEnv(t, nil)
	require.NoError(t, env.run("init", "--preset", "posts"))

	err := env.run("init")
	require.Error(t, err)
	assert.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))

	require.NoError(t, env.run("init", "--force"))
}

func TestCLI_BuildOutputOverride(t *testing.T) {
	env := newCLIEnv(t, siteFiles)
	require.NoError(t, env.run("init"))
	out := filepath.Join(t.TempDir(), "site")

	require.NoError(t, env.run("build", "-o", out, "--clean"))
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.NoDirExists(t, filepath.Join(env.dir, "public"))
}

func TestCLI_BuildRefusesToCleanSources(t *testing.T) {
	env := newCLIEnv(t, siteFiles)
	require.NoError(t, env.run("init"))

	for _, out := range []string{filepath.Dir(env.dir), filepath.Join(env.dir, "articles"), env.dir} {
		err := env.run("build", "-o", out, "--clean")
		require.Error(t, err, out)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig), out)
	}
	assert.FileExists(t, filepath.Join(env.dir, "articles", "first-post.md"))
}

func TestCLI_WatchRejectsShortSchedule(t *testing.T) {
	env := newCLIEnv(t, siteFiles)
	require.NoError(t, env.run("init"))

	err := env.run("watch", "--schedule", "100ms")
	require.Error(t, err)
	assert.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
	assert.NoDirExists(t, filepath.Join(env.dir, "public"))
}

func TestCLI_BuildFailureMapsToExitCode(t *testing.T) {
	files := map[string]string{}
	for k, v := range siteFiles {
		files[k] = v
	}
	files["templates/index.html"] = "{{ range }}"
	env := newCLIEnv(t, files)
	require.NoError(t, env.run("init"))

	err := env.run("build")
	require.Error(t, err)
	adapter := ferrors.NewCLIErrorAdapter(false, nil)
	assert.Equal(t, 11, adapter.ExitCodeFor(err))
	assert.Contains(t, adapter.FormatError(err), "index.html")
}

func TestCLI_MissingConfig(t *testing.T) {
	env := newCLIEnv(t, nil)

	err := env.run("build")
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestCLI_List(t *testing.T) {
	env := newCLIEnv(t, siteFiles)
	require.NoError(t, env.run("init"))

	require.NoError(t, env.run("list", "--tags"))
	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "DATE")
	assert.Contains(t, lines[1], "second-post")
	assert.Contains(t, lines[1], "Second Post")
	assert.Contains(t, lines[2], "first-post")
	assert.Contains(t, lines[2], "intro")
	assert.Equal(t, "2 documents", lines[3])
	assert.NoDirExists(t, filepath.Join(env.dir, "public"))
}

func TestCLI_Version(t *testing.T) {
	var cli commands.CLI
	var stdout, stderr bytes.Buffer
	code := -1
	type exited struct{}

	func() {
		defer func() {
			if r := recover(); r != nil {
				_, ok := r.(exited)
				require.True(t, ok, "unexpected panic: %v", r)
			}
		}()
		_ = run(context.Background(), &cli, []string{"--version"}, &stdout, &stderr, kong.Exit(func(c int) {
			code = c
			panic(exited{})
		}))
	}()

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "blogbuilder")
}
