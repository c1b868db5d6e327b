package walker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wyndcliff/htaccessd/core/htaccess/cache"
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveMergesParentAndChildWithOverride(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".htaccess"), "Header set X-Frame-Options DENY\nSetEnv APP_ENV parent\n")
	sub := filepath.Join(root, "sub")
	writeFile(t, filepath.Join(sub, ".htaccess"), "SetEnv APP_ENV child\n")

	w := New(cache.New(8))
	list, warnings, err := w.Resolve(root, sub)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.NotNil(t, list)

	ds := list.Slice()
	require.Len(t, ds, 2)

	var env *directive.Directive
	for _, d := range ds {
		if d.Kind == directive.SetEnv {
			env = d
		}
	}
	require.NotNil(t, env)
	require.Equal(t, "child", env.Value)
}

func TestResolveSkipsMissingLevels(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeFile(t, filepath.Join(sub, ".htaccess"), "SetEnv X 1\n")

	w := New(cache.New(8))
	list, warnings, err := w.Resolve(root, sub)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.NotNil(t, list)
	require.Equal(t, 1, list.Len)
}

func TestResolveRejectsPathOutsideRoot(t *testing.T) {
	root := t.TempDir()
	other := t.TempDir()

	w := New(cache.New(8))
	_, _, err := w.Resolve(root, other)
	require.Error(t, err)
}

func TestResolveUsesCacheOnSecondCall(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".htaccess"), "SetEnv X 1\n")

	c := cache.New(8)
	w := New(c)
	_, _, err := w.Resolve(root, root)
	require.NoError(t, err)
	require.Equal(t, 1, c.Stats().Entries)

	_, _, err = w.Resolve(root, root)
	require.NoError(t, err)
	require.Equal(t, 1, c.Stats().Entries)
}

func TestMergeHeaderOverrideByName(t *testing.T) {
	parent := directive.NewList()
	parent.Append(&directive.Directive{Kind: directive.HeaderSet, Name: "X", Value: "parent"})
	parent.Append(&directive.Directive{Kind: directive.HeaderSet, Name: "Y", Value: "keep"})

	child := directive.NewList()
	child.Append(&directive.Directive{Kind: directive.HeaderSet, Name: "X", Value: "child"})

	merged := Merge(parent, child)
	ds := merged.Slice()
	require.Len(t, ds, 2)
	require.Equal(t, "child", ds[0].Value)
	require.Equal(t, "keep", ds[1].Value)
}

type recordedEvent struct {
	kind, path, detail string
}

type fakeRecorder struct {
	events []recordedEvent
}

func (f *fakeRecorder) Record(kind, path, detail string) {
	f.events = append(f.events, recordedEvent{kind, path, detail})
}

func TestResolveRecordsCacheMissThenHit(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".htaccess"), "SetEnv X 1\n")

	rec := &fakeRecorder{}
	w := New(cache.New(8)).WithRecorder(rec)

	_, _, err := w.Resolve(root, root)
	require.NoError(t, err)
	_, _, err = w.Resolve(root, root)
	require.NoError(t, err)

	require.Len(t, rec.events, 2)
	require.Equal(t, "cache_miss", rec.events[0].kind)
	require.Equal(t, "cache_hit", rec.events[1].kind)
}

func TestMergeAllowFromKeyedByValueAppends(t *testing.T) {
	parent := directive.NewList()
	parent.Append(&directive.Directive{Kind: directive.AllowFrom, Value: "10.0.0.0/8"})

	child := directive.NewList()
	child.Append(&directive.Directive{Kind: directive.AllowFrom, Value: "192.168.0.0/16"})

	merged := Merge(parent, child)
	require.Equal(t, 2, merged.Len)
}
