package build

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docscheck/internal/config"
	"git.home.luguber.info/inful/docscheck/internal/corpus"
	"git.home.luguber.info/inful/docscheck/internal/report"
	"git.home.luguber.info/inful/docscheck/internal/validate"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRun_CleanCorpus(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home\n\n- [Foo](foo.md)\n")
	writeFile(t, root, "foo.md", "# Foo\n")

	r, err := NewRunner(config.Default()).Run(context.Background(), root)
	require.NoError(t, err)

	require.Empty(t, r.BrokenLinks)
	require.Empty(t, r.OrphanDocuments)
	require.False(t, r.HasIssues())
	require.NotEmpty(t, r.RunID)
}

func TestRun_BrokenLinkScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home\n\n- [Foo](foo.md)\n")

	r, err := NewRunner(config.Default()).Run(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, r.BrokenLinks, 1)
	require.Equal(t, "index.md", r.BrokenLinks[0].Source)
	require.Equal(t, "foo.md", r.BrokenLinks[0].Target)
}

func TestRun_OrphanScenario(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home\n\n- [Foo](foo.md)\n")
	writeFile(t, root, "foo.md", "# Foo\n")
	writeFile(t, root, "orphan.md", "# Orphan\n")

	r, err := NewRunner(config.Default()).Run(context.Background(), root)
	require.NoError(t, err)

	require.Equal(t, []string{"orphan.md"}, r.OrphanDocuments)
	require.True(t, r.HasIssues())
}

func TestRun_MissingRootIsFatal(t *testing.T) {
	_, err := NewRunner(config.Default()).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, corpus.ErrRootNotFound)
}

func TestRun_RepeatedRunsProduceIdenticalReports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home\n\n- [Foo](foo.md)\n- [Gone](gone.md)\n")
	writeFile(t, root, "foo.md", "# Foo\n")
	writeFile(t, root, "stray.md", "# Stray\n")

	runner := NewRunner(config.Default())

	first, err := runner.Run(context.Background(), root)
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), root)
	require.NoError(t, err)

	var a, b bytes.Buffer
	require.NoError(t, report.NewFormatter("json").Format(&a, first))
	require.NoError(t, report.NewFormatter("json").Format(&b, second))
	require.Equal(t, a.String(), b.String())
}

type stubChecker struct{ broken []validate.BrokenLink }

func (s stubChecker) Check(context.Context, []validate.ExternalLink) []validate.BrokenLink {
	return s.broken
}

type capturePublisher struct{ published *validate.Report }

func (c *capturePublisher) PublishReport(_ context.Context, r *validate.Report) error {
	c.published = r
	return nil
}

func TestRun_ExternalCheckerAndPublisherWiredIn(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "index.md", "# Home\n\n[Site](https://example.com/gone)\n")

	pub := &capturePublisher{}
	checker := stubChecker{broken: []validate.BrokenLink{{Source: "index.md", Target: "https://example.com/gone"}}}

	r, err := NewRunner(config.Default()).
		WithExternalChecker(checker).
		WithPublisher(pub).
		Run(context.Background(), root)
	require.NoError(t, err)

	require.Len(t, r.BrokenExternal, 1)
	require.NotNil(t, pub.published)
	require.True(t, r.HasIssues())
}
