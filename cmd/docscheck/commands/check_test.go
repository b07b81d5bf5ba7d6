package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docscheck/internal/config"
	"git.home.luguber.info/inful/docscheck/internal/corpus"
)

func writeDoc(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testCLI(t *testing.T) *CLI {
	t.Helper()
	t.Chdir(t.TempDir())
	return &CLI{Config: config.DefaultConfigPath}
}

func TestCheckCmd_CleanCorpus(t *testing.T) {
	docs := t.TempDir()
	writeDoc(t, docs, "index.md", "# Home\n\n- [Foo](foo.md)\n")
	writeDoc(t, docs, "foo.md", "# Foo\n")

	cmd := &CheckCmd{Root: docs}
	require.NoError(t, cmd.Run(&Global{}, testCLI(t)))
}

func TestCheckCmd_StrictFailsOnBrokenLink(t *testing.T) {
	docs := t.TempDir()
	writeDoc(t, docs, "index.md", "# Home\n\n- [Gone](gone.md)\n")

	cmd := &CheckCmd{Root: docs, Strict: true}
	err := cmd.Run(&Global{}, testCLI(t))
	require.ErrorIs(t, err, ErrIssuesFound)
}

func TestCheckCmd_NonStrictReportsWithoutFailing(t *testing.T) {
	docs := t.TempDir()
	writeDoc(t, docs, "index.md", "# Home\n\n- [Gone](gone.md)\n")

	cmd := &CheckCmd{Root: docs}
	require.NoError(t, cmd.Run(&Global{}, testCLI(t)))
}

func TestCheckCmd_MissingRootIsFatal(t *testing.T) {
	cmd := &CheckCmd{Root: filepath.Join(t.TempDir(), "absent")}
	err := cmd.Run(&Global{}, testCLI(t))
	require.ErrorIs(t, err, corpus.ErrRootNotFound)
}

func TestInitCmd_CreatesAndRefusesToOverwrite(t *testing.T) {
	cli := testCLI(t)

	require.NoError(t, (&InitCmd{}).Run(&Global{}, cli))
	require.FileExists(t, cli.Config)

	require.Error(t, (&InitCmd{}).Run(&Global{}, cli))
	require.NoError(t, (&InitCmd{Force: true}).Run(&Global{}, cli))
}

func TestVerifyCmd_StrictFailsOnBrokenRef(t *testing.T) {
	site := t.TempDir()
	writeDoc(t, site, "index.html", `<a href="missing.html">Missing</a>`)

	cmd := &VerifyCmd{SiteDir: site, Strict: true}
	err := cmd.Run(&Global{}, testCLI(t))
	require.ErrorIs(t, err, ErrIssuesFound)
}
