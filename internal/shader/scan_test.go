package shader

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/shadercat/internal/testutil"
)

func entryNames(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	sort.Strings(out)
	return out
}

func TestScanRoot_OneEntryPerBundle(t *testing.T) {
	root := testutil.WriteShaderTree(t, t.TempDir(),
		testutil.Bundle{Dir: "Pixellate", Files: []string{"Pixellate.slangp"}},
		testutil.Bundle{Dir: "Scanlines", Files: []string{"scan.slangp", "scan.slang"}},
		testutil.Bundle{Dir: "xBR", Files: []string{"xbr-lv2.slangp"}},
	)

	entries := ScanRoot(root, testutil.NewTestLogger(t))

	require.Len(t, entries, 3)
	assert.Equal(t, []string{"Pixellate", "Scanlines", "xBR"}, entryNames(entries))

	for _, e := range entries {
		assert.True(t, filepath.IsAbs(e.Path), "path %q should be absolute", e.Path)
		assert.Equal(t, DefinitionExt, filepath.Ext(e.Path))
		assert.Equal(t, e.Name, filepath.Base(filepath.Dir(e.Path)))
	}
}

func TestScanRoot_NameComesFromDirectory(t *testing.T) {
	root := testutil.WriteShaderTree(t, t.TempDir(),
		testutil.Bundle{Dir: "CRT Royale", Files: []string{"crt-royale-kurozumi.slangp"}},
	)

	entries := ScanRoot(root, nil)

	require.Len(t, entries, 1)
	assert.Equal(t, "CRT Royale", entries[0].Name)
	assert.Equal(t, "crt-royale-kurozumi.slangp", filepath.Base(entries[0].Path))
}

func TestScanRoot_SkipsBundlesWithoutPreset(t *testing.T) {
	root := testutil.WriteShaderTree(t, t.TempDir(),
		testutil.Bundle{Dir: "Empty"},
		testutil.Bundle{Dir: "SourcesOnly", Files: []string{"a.slang", "README.md"}},
		testutil.Bundle{Dir: "WrongCase", Files: []string{"upper.SLANGP"}},
		testutil.Bundle{Dir: "Nested", Files: []string{"deeper/nested.slangp"}},
		testutil.Bundle{Dir: "HiddenPreset", Files: []string{".hidden.slangp"}},
		testutil.Bundle{Dir: "Good", Files: []string{"good.slangp"}},
	)

	entries := ScanRoot(root, testutil.NewTestLogger(t))

	assert.Equal(t, []string{"Good"}, entryNames(entries))
}

func TestScanRoot_MultiplePresetsYieldAtMostOneEntry(t *testing.T) {
	root := testutil.WriteShaderTree(t, t.TempDir(),
		testutil.Bundle{Dir: "Ambiguous", Files: []string{"a.slangp", "b.slangp", "c.slangp"}},
	)

	entries := ScanRoot(root, testutil.NewTestLogger(t))

	require.Len(t, entries, 1)
	assert.Equal(t, "Ambiguous", entries[0].Name)
	assert.Contains(t, []string{"a.slangp", "b.slangp", "c.slangp"}, filepath.Base(entries[0].Path))
}

func TestScanRoot_SkipsHiddenAndFilesAtTopLevel(t *testing.T) {
	root := testutil.WriteShaderTree(t, t.TempDir(),
		testutil.Bundle{Dir: ".git", Files: []string{"x.slangp"}},
		testutil.Bundle{Dir: "Visible", Files: []string{"v.slangp"}},
	)
	require.NoError(t, os.WriteFile(filepath.Join(root, "loose.slangp"), []byte("shaders = 1\n"), 0644))

	entries := ScanRoot(root, nil)

	assert.Equal(t, []string{"Visible"}, entryNames(entries))
}

func TestScanRoot_MissingRoot(t *testing.T) {
	entries := ScanRoot(filepath.Join(t.TempDir(), "does-not-exist"), testutil.NewTestLogger(t))
	assert.Empty(t, entries)
}

func TestScanRoot_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	assert.Empty(t, ScanRoot(path, nil))
}

func TestScanRoot_UnreadableBundleIsSkipped(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	root := testutil.WriteShaderTree(t, t.TempDir(),
		testutil.Bundle{Dir: "Locked", Files: []string{"locked.slangp"}},
		testutil.Bundle{Dir: "Open", Files: []string{"open.slangp"}},
	)
	locked := filepath.Join(root, "Locked")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	assert.Equal(t, []string{"Open"}, entryNames(ScanRoot(root, nil)))
}

func TestScanRoot_FollowsSymlinkedBundles(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	tmp := t.TempDir()
	elsewhere := testutil.WriteShaderTree(t, filepath.Join(tmp, "elsewhere"),
		testutil.Bundle{Dir: "Linked", Files: []string{"linked.slangp"}},
	)
	root := filepath.Join(tmp, "root")
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.Symlink(filepath.Join(elsewhere, "Linked"), filepath.Join(root, "Linked")))

	assert.Equal(t, []string{"Linked"}, entryNames(ScanRoot(root, nil)))
}

func TestScanSearchRoots(t *testing.T) {
	tmp := t.TempDir()
	first := testutil.WriteShaderTree(t, filepath.Join(tmp, "first"),
		testutil.Bundle{Dir: "A", Files: []string{"a.slangp"}},
	)
	second := testutil.WriteShaderTree(t, filepath.Join(tmp, "second"),
		testutil.Bundle{Dir: "B", Files: []string{"b.slangp"}},
	)

	tests := []struct {
		name  string
		roots []string
		want  []string
	}{
		{
			name:  "no roots",
			roots: nil,
			want:  nil,
		},
		{
			name:  "keeps root order",
			roots: []string{second, first},
			want:  []string{"B", "A"},
		},
		{
			name:  "missing roots contribute nothing",
			roots: []string{filepath.Join(tmp, "missing"), first, "", filepath.Join(tmp, "also-missing")},
			want:  []string{"A"},
		},
		{
			name:  "duplicate roots are scanned once",
			roots: []string{first, first + string(filepath.Separator), second},
			want:  []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := ScanSearchRoots(tt.roots, testutil.NewTestLogger(t))

			var got []string
			for _, e := range entries {
				got = append(got, e.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEntryForPath(t *testing.T) {
	e := EntryForPath(filepath.Join("some", "Bundle", "preset.slangp"))

	assert.Equal(t, "Bundle", e.Name)
	assert.True(t, filepath.IsAbs(e.Path))
	assert.Equal(t, "Bundle", e.String())
}
