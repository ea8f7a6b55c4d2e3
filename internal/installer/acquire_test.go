package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolenv-installer/internal/config"
)

func newTestAcquirer(t *testing.T) (*Acquirer, *stubFetcher, *stubExtractor) {
	t.Helper()
	cfg, err := config.Init(t.TempDir(), false)
	require.NoError(t, err)
	fetch := &stubFetcher{}
	extract := &stubExtractor{}
	return &Acquirer{Config: cfg, Fetcher: fetch, Extractor: extract}, fetch, extract
}

func TestAcquireLocalPathMissingSource(t *testing.T) {
	a, _, _ := newTestAcquirer(t)

	_, err := a.Acquire("mytool", config.ToolDescriptor{
		Kind: config.KindLocalPath,
		Path: filepath.Join(t.TempDir(), "does-not-exist"),
	}, nil)

	var missing *MissingSourceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "mytool", missing.Tool)
}

func TestAcquireLocalPathCopiesPlainFile(t *testing.T) {
	a, _, extract := newTestAcquirer(t)

	src := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0755))

	art, err := a.Acquire("mytool", config.ToolDescriptor{Kind: config.KindLocalPath, Path: src}, nil)
	require.NoError(t, err)
	defer art.Release()

	assert.Empty(t, extract.extracted)
	assert.Equal(t, "payload.bin", filepath.Base(art.Path))
	assert.FileExists(t, art.Path)
}

func TestAcquireRemoteDownloadsAndExtracts(t *testing.T) {
	a, fetch, extract := newTestAcquirer(t)

	art, err := a.Acquire("mytool", config.ToolDescriptor{
		Kind: config.KindRemote,
		URL:  "https://example.com/dist/tool.tar.gz",
	}, &config.Proxy{HTTP: "http://proxy:3128"})
	require.NoError(t, err)
	defer art.Release()

	require.Len(t, fetch.calls, 1)
	call := fetch.calls[0]
	assert.Equal(t, "mytool", call.Name)
	assert.Equal(t, "tool.tar.gz", filepath.Base(call.Dest))
	require.NotNil(t, call.Proxy)
	assert.Equal(t, "http://proxy:3128", call.Proxy.HTTP)

	require.Len(t, extract.extracted, 1)
	assert.FileExists(t, filepath.Join(art.Path, "bin", "tool"))
}

func TestAcquireRemoteUnusableURL(t *testing.T) {
	a, fetch, _ := newTestAcquirer(t)

	_, err := a.Acquire("mytool", config.ToolDescriptor{
		Kind: config.KindRemote,
		URL:  "https://example.com/",
	}, nil)

	var unusable *UnusableURLError
	require.ErrorAs(t, err, &unusable)
	assert.Empty(t, fetch.calls)
}

func TestAcquireRejectsManagedDescriptor(t *testing.T) {
	a, _, _ := newTestAcquirer(t)
	_, err := a.Acquire("mytool", config.ToolDescriptor{Kind: config.KindVersion, Version: "1.0"}, nil)
	require.Error(t, err)
}

func TestDownloadFileName(t *testing.T) {
	cases := map[string]string{
		"https://example.com/a/b/tool.zip": "tool.zip",
		"https://example.com/tool":         "tool",
		"https://example.com/a/b/":         "b",
	}
	for raw, want := range cases {
		got, err := downloadFileName(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := downloadFileName("https://example.com")
	var unusable *UnusableURLError
	assert.ErrorAs(t, err, &unusable)
}

func TestArtifactReleaseRemovesTempDir(t *testing.T) {
	a, _, _ := newTestAcquirer(t)

	src := filepath.Join(t.TempDir(), "payload.bin")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0644))

	art, err := a.Acquire("mytool", config.ToolDescriptor{Kind: config.KindLocalPath, Path: src}, nil)
	require.NoError(t, err)

	scratch := filepath.Dir(art.Path)
	art.Release()
	art.Release() // second call is a no-op
	assert.NoDirExists(t, scratch)
}
