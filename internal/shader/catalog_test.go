package shader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/shadercat/internal/notifier"
	"github.com/leapstack-labs/shadercat/internal/testutil"
)

func setupTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()

	systemRoot, userRoot := testutil.SetupShaderRoots(t)
	cat, err := NewCatalog(CatalogOptions{
		SystemRoot:      systemRoot,
		UserRoots:       []string{userRoot},
		RequireFallback: true,
		Logger:          testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	return cat, userRoot
}

func addBundle(t *testing.T, root, name string) {
	t.Helper()
	testutil.WriteShaderTree(t, root, testutil.Bundle{Dir: name, Files: []string{name + ".slangp"}})
}

func TestNewCatalog(t *testing.T) {
	systemRoot, userRoot := testutil.SetupShaderRoots(t)
	addBundle(t, userRoot, "MyShader")

	cat, err := NewCatalog(CatalogOptions{
		SystemRoot:      systemRoot,
		UserRoots:       []string{userRoot},
		RequireFallback: true,
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Pixellate", "CRT-Lottes"}, cat.SystemNames())
	assert.Equal(t, []string{"MyShader"}, cat.CustomNames())
	assert.Equal(t, systemRoot, cat.SystemRoot())
	assert.Equal(t, []string{userRoot}, cat.UserRoots())

	stats := cat.Stats()
	assert.Equal(t, 2, stats.System)
	assert.Equal(t, 1, stats.Custom)
	assert.Equal(t, 0, stats.ReloadCount)
}

func TestNewCatalog_FallbackMissing(t *testing.T) {
	systemRoot := testutil.WriteShaderTree(t, t.TempDir(),
		testutil.Bundle{Dir: "CRT", Files: []string{"crt.slangp"}},
	)

	_, err := NewCatalog(CatalogOptions{SystemRoot: systemRoot, RequireFallback: true})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFallbackMissing))

	// Not required: construction succeeds but Fallback panics
	cat, err := NewCatalog(CatalogOptions{SystemRoot: systemRoot})
	require.NoError(t, err)
	assert.Panics(t, func() { cat.Fallback() })
}

func TestNewCatalog_FallbackMustBeSystemShader(t *testing.T) {
	systemRoot := testutil.WriteShaderTree(t, filepath.Join(t.TempDir(), "sys"))
	userRoot := testutil.WriteShaderTree(t, filepath.Join(t.TempDir(), "user"),
		testutil.Bundle{Dir: FallbackName, Files: []string{"p.slangp"}},
	)

	_, err := NewCatalog(CatalogOptions{
		SystemRoot:      systemRoot,
		UserRoots:       []string{userRoot},
		RequireFallback: true,
	})
	assert.ErrorIs(t, err, ErrFallbackMissing)
}

func TestCatalog_Lookup(t *testing.T) {
	cat, userRoot := setupTestCatalog(t)
	addBundle(t, userRoot, "Mine")
	cat.Reload()

	tests := []struct {
		name      string
		lookup    string
		wantFound bool
		wantDir   string
	}{
		{name: "system shader", lookup: "Pixellate", wantFound: true, wantDir: cat.SystemRoot()},
		{name: "custom shader", lookup: "Mine", wantFound: true, wantDir: userRoot},
		{name: "case sensitive", lookup: "pixellate", wantFound: false},
		{name: "unknown", lookup: "Nope", wantFound: false},
		{name: "empty", lookup: "", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := cat.Lookup(tt.lookup)
			assert.Equal(t, tt.wantFound, ok)
			if tt.wantFound {
				assert.Equal(t, tt.lookup, e.Name)
				assert.Equal(t, tt.wantDir, filepath.Dir(filepath.Dir(e.Path)))
			} else {
				assert.Equal(t, Entry{}, e)
			}
		})
	}
}

func TestCatalog_LookupPrefersSystem(t *testing.T) {
	systemRoot, userRoot := testutil.SetupShaderRoots(t)
	addBundle(t, userRoot, "CRT-Lottes")

	cat, err := NewCatalog(CatalogOptions{SystemRoot: systemRoot, UserRoots: []string{userRoot}})
	require.NoError(t, err)

	e, ok := cat.Lookup("CRT-Lottes")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(systemRoot, "CRT-Lottes", "crt-lottes.slangp"), e.Path)

	// The shadowed custom entry is still listed
	assert.Contains(t, cat.CustomNames(), "CRT-Lottes")
}

func TestCatalog_ReloadReplacesCustomOnly(t *testing.T) {
	cat, userRoot := setupTestCatalog(t)
	systemBefore := cat.SystemShaders()

	addBundle(t, userRoot, "First")
	assert.Equal(t, 1, cat.Reload())
	assert.Equal(t, []string{"First"}, cat.CustomNames())

	// Replace, not merge
	require.NoError(t, os.RemoveAll(filepath.Join(userRoot, "First")))
	addBundle(t, userRoot, "Second")
	assert.Equal(t, 1, cat.Reload())
	assert.Equal(t, []string{"Second"}, cat.CustomNames())

	_, ok := cat.Lookup("First")
	assert.False(t, ok)

	// System partition is never rescanned
	addBundle(t, cat.SystemRoot(), "LateSystem")
	cat.Reload()
	assert.Equal(t, systemBefore, cat.SystemShaders())
	_, ok = cat.Lookup("LateSystem")
	assert.False(t, ok)

	assert.Equal(t, 3, cat.Stats().ReloadCount)
}

func TestCatalog_AllNamesConcatenation(t *testing.T) {
	cat, userRoot := setupTestCatalog(t)

	check := func() {
		t.Helper()
		want := append(cat.SystemNames(), cat.CustomNames()...)
		assert.Equal(t, want, cat.AllNames())
	}

	check()

	addBundle(t, userRoot, "A")
	addBundle(t, userRoot, "B")
	cat.Reload()
	check()
	assert.Len(t, cat.AllNames(), 4)

	require.NoError(t, os.RemoveAll(filepath.Join(userRoot, "A")))
	cat.Reload()
	check()
	assert.Len(t, cat.AllNames(), 3)
}

func TestCatalog_NamesAreCopies(t *testing.T) {
	cat, _ := setupTestCatalog(t)

	names := cat.AllNames()
	require.NotEmpty(t, names)
	names[0] = "mutated"

	assert.NotContains(t, cat.AllNames(), "mutated")

	sys := cat.SystemShaders()
	sys[0].Name = "mutated"
	_, ok := cat.Lookup("mutated")
	assert.False(t, ok)
}

func TestCatalog_ReloadNotifiesSubscribers(t *testing.T) {
	n := notifier.New()
	systemRoot, userRoot := testutil.SetupShaderRoots(t)
	cat, err := NewCatalog(CatalogOptions{
		SystemRoot: systemRoot,
		UserRoots:  []string{userRoot},
		Notifier:   n,
	})
	require.NoError(t, err)

	ch := cat.Subscribe()
	defer cat.Unsubscribe(ch)
	assert.Equal(t, 1, n.Len())

	addBundle(t, userRoot, "Fresh")
	cat.Reload()

	select {
	case <-ch:
		// Subscriber sees the new list once notified
		assert.Contains(t, cat.CustomNames(), "Fresh")
	case <-time.After(time.Second):
		t.Fatal("no change notification after Reload")
	}
}

func TestCatalog_ReloadDoesNotBlockOnSlowSubscriber(t *testing.T) {
	cat, _ := setupTestCatalog(t)

	ch := cat.Subscribe()
	defer cat.Unsubscribe(ch)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			cat.Reload()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Reload blocked on an unread subscriber")
	}
}

func TestCatalog_Fallback(t *testing.T) {
	cat, _ := setupTestCatalog(t)

	e := cat.Fallback()
	assert.Equal(t, FallbackName, e.Name)
}

func TestCatalog_ConcurrentReadsAndReloads(t *testing.T) {
	cat, userRoot := setupTestCatalog(t)
	addBundle(t, userRoot, "Custom")

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				cat.Reload()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				all := cat.AllNames()
				assert.GreaterOrEqual(t, len(all), 2)
				_, ok := cat.Lookup("Pixellate")
				assert.True(t, ok)
				_ = cat.CustomNames()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"Custom"}, cat.CustomNames())
}

func TestCatalog_OverlappingReloadsKeepNewestScan(t *testing.T) {
	cat, userRoot := setupTestCatalog(t)

	for i := 0; i < 100; i++ {
		name := fmt.Sprintf("new%03d", i)

		done := make(chan struct{})
		go func() {
			defer close(done)
			cat.Reload()
		}()

		addBundle(t, userRoot, name)
		cat.Reload()
		<-done

		_, ok := cat.Lookup(name)
		require.True(t, ok, "catalog missed %s after both reloads returned", name)
	}

	assert.Len(t, cat.CustomNames(), 100)
	assert.Equal(t, 200, cat.Stats().ReloadCount)
}
