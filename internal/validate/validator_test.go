package validate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docscheck/internal/corpus"
)

func testCorpus(docs map[string]string) *corpus.Corpus {
	c := &corpus.Corpus{
		Root:      "/docs",
		Documents: make(map[string]*corpus.Document),
		Assets:    make(map[string]struct{}),
	}
	for path, body := range docs {
		c.Documents[path] = &corpus.Document{Path: path, Raw: []byte(body), Body: []byte(body)}
	}
	return c
}

func TestExtractLinks_SplitsInternalAndExternal(t *testing.T) {
	c := testCorpus(map[string]string{
		"index.md": "[Foo](foo.md) [Site](https://example.com) [Here](#local)\n",
		"foo.md":   "No links.\n",
	})

	links, external, err := ExtractLinks(c)
	require.NoError(t, err)

	require.Len(t, links, 1)
	require.Equal(t, "index.md", links[0].Source)
	require.Equal(t, "foo.md", links[0].Target)
	require.Equal(t, "Foo", links[0].AnchorText)

	require.Len(t, external, 1)
	require.Equal(t, "https://example.com", external[0].URL)
}

func TestBuildReport_TargetExists(t *testing.T) {
	c := testCorpus(map[string]string{
		"index.md": "[Foo](foo.md)\n",
		"foo.md":   "ok\n",
	})
	links, external, err := ExtractLinks(c)
	require.NoError(t, err)

	report := BuildReport(c, links, external, nil, nil, "run-1")
	require.Empty(t, report.BrokenLinks)
	require.Equal(t, 2, report.DocumentCount)
	require.Equal(t, 1, report.LinkCount)
}

func TestBuildReport_MissingTargetIsBroken(t *testing.T) {
	c := testCorpus(map[string]string{
		"index.md": "[Foo](foo.md)\n",
	})
	links, external, err := ExtractLinks(c)
	require.NoError(t, err)

	report := BuildReport(c, links, external, nil, nil, "run-1")
	require.Len(t, report.BrokenLinks, 1)
	require.Equal(t, BrokenLink{Source: "index.md", Target: "foo.md", AnchorText: "Foo"}, report.BrokenLinks[0])
}

func TestBuildReport_RemovedTargetRoundTrip(t *testing.T) {
	docs := map[string]string{
		"index.md": "[Foo](foo.md)\n",
		"foo.md":   "ok\n",
	}

	c := testCorpus(docs)
	links, external, err := ExtractLinks(c)
	require.NoError(t, err)
	require.Empty(t, BuildReport(c, links, external, nil, nil, "r").BrokenLinks)

	delete(docs, "foo.md")
	c = testCorpus(docs)
	links, external, err = ExtractLinks(c)
	require.NoError(t, err)

	report := BuildReport(c, links, external, nil, nil, "r")
	require.Len(t, report.BrokenLinks, 1)
	require.Equal(t, "foo.md", report.BrokenLinks[0].Target)
}

func TestBuildReport_AssetTargetsResolve(t *testing.T) {
	c := testCorpus(map[string]string{
		"index.md": "![arch](img/arch.png) [data](data/missing.csv)\n",
	})
	c.Assets["img/arch.png"] = struct{}{}

	links, external, err := ExtractLinks(c)
	require.NoError(t, err)

	report := BuildReport(c, links, external, nil, nil, "r")
	require.Len(t, report.BrokenLinks, 1)
	require.Equal(t, "data/missing.csv", report.BrokenLinks[0].Target)
}

func TestBuildReport_EscapingRootReportedAsWritten(t *testing.T) {
	c := testCorpus(map[string]string{
		"index.md": "[Out](../outside.md)\n",
	})
	links, external, err := ExtractLinks(c)
	require.NoError(t, err)

	report := BuildReport(c, links, external, nil, nil, "r")
	require.Len(t, report.BrokenLinks, 1)
	require.Equal(t, "../outside.md", report.BrokenLinks[0].Target)
}

func TestBuildReport_StableSortAndDeduplication(t *testing.T) {
	c := testCorpus(map[string]string{
		"b.md": "[x](zzz.md) [x again](zzz.md) [y](aaa.md)\n",
		"a.md": "[z](missing.md)\n",
	})
	links, external, err := ExtractLinks(c)
	require.NoError(t, err)

	report := BuildReport(c, links, external, nil, nil, "r")
	require.Len(t, report.BrokenLinks, 3)
	require.Equal(t, BrokenLink{Source: "a.md", Target: "missing.md", AnchorText: "z"}, report.BrokenLinks[0])
	require.Equal(t, "aaa.md", report.BrokenLinks[1].Target)
	require.Equal(t, "zzz.md", report.BrokenLinks[2].Target)
}

func TestBuildReport_ZeroLinksIsNotAnError(t *testing.T) {
	c := testCorpus(map[string]string{"lonely.md": "Just prose.\n"})
	links, external, err := ExtractLinks(c)
	require.NoError(t, err)
	require.Empty(t, links)

	report := BuildReport(c, links, external, nil, nil, "r")
	require.Empty(t, report.BrokenLinks)
	require.False(t, report.HasIssues())
}

func TestBuildReport_OrphansMakeStrictFail(t *testing.T) {
	c := testCorpus(map[string]string{"orphan.md": "alone\n"})
	report := BuildReport(c, nil, nil, []string{"orphan.md"}, nil, "r")
	require.True(t, report.HasIssues())
	require.Equal(t, []string{"orphan.md"}, report.OrphanDocuments)
}
