package rewrite

import (
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memTree(t *testing.T, files map[string]string) *Tree {
	t.Helper()
	fs := memfs.New()
	for p, content := range files {
		require.NoError(t, util.WriteFile(fs, p, []byte(content), 0o644))
	}
	return NewTree(fs)
}

func memRead(t *testing.T, tree *Tree, p string) string {
	t.Helper()
	data, err := util.ReadFile(tree.FS(), p)
	require.NoError(t, err)
	return string(data)
}

func memExists(t *testing.T, tree *Tree, p string) bool {
	t.Helper()
	ok, err := tree.exists(p)
	require.NoError(t, err)
	return ok
}

func TestContentRule(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		replacements []Replacement
		wantContent  string
		wantStatus   Status
		wantReplaced int
	}{
		{
			name:         "replaces every occurrence",
			content:      "Foo and Foo and Foo",
			replacements: []Replacement{{Old: "Foo", New: "Bar"}},
			wantContent:  "Bar and Bar and Bar",
			wantStatus:   StatusUpdated,
			wantReplaced: 3,
		},
		{
			name:    "applies replacements in order",
			content: "org.example.Foo",
			replacements: []Replacement{
				{Old: "Foo", New: "Bar"},
				{Old: "org.example.Foo", New: "com.bar"},
			},
			wantContent:  "org.example.Bar",
			wantStatus:   StatusUpdated,
			wantReplaced: 1,
		},
		{
			name:         "no match leaves file unchanged",
			content:      "nothing here",
			replacements: []Replacement{{Old: "Foo", New: "Bar"}},
			wantContent:  "nothing here",
			wantStatus:   StatusUnchanged,
		},
		{
			name:         "empty pattern is ignored",
			content:      "abc",
			replacements: []Replacement{{Old: "", New: "x"}},
			wantContent:  "abc",
			wantStatus:   StatusUnchanged,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := memTree(t, map[string]string{"a/file.txt": tt.content})

			out, err := ContentRule{Path: "a/file.txt", Replacements: tt.replacements}.Apply(tree)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantReplaced, out.Replaced)
			assert.Equal(t, tt.wantContent, memRead(t, tree, "a/file.txt"))
		})
	}
}

func TestContentRule_NewValueEmbedsOldValue(t *testing.T) {
	reps := []Replacement{
		{Old: "Foo", New: "FooX"},
		{Old: "org.example.Foo", New: "com.foox"},
		{Old: "com.foo", New: "com.foox"},
	}
	tree := memTree(t, map[string]string{
		"a/file.txt": "name Foo\nid org.example.Foo\nlegacy com.foo\n",
	})
	rule := ContentRule{Path: "a/file.txt", Replacements: reps}

	out, err := rule.Apply(tree)
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, out.Status)
	want := "name FooX\nid org.example.FooX\nlegacy com.foox\n"
	assert.Equal(t, want, memRead(t, tree, "a/file.txt"))

	out, err = rule.Apply(tree)
	require.NoError(t, err)
	assert.Equal(t, StatusUnchanged, out.Status)
	assert.Zero(t, out.Replaced)
	assert.Equal(t, want, memRead(t, tree, "a/file.txt"))
}

func TestReplaceUnprotected(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		rep       Replacement
		protected []string
		want      string
		wantN     int
	}{
		{
			name:    "no protection behaves like ReplaceAll",
			content: "Foo Foo",
			rep:     Replacement{Old: "Foo", New: "Bar"},
			want:    "Bar Bar",
			wantN:   2,
		},
		{
			name:      "skips occurrences inside protected values",
			content:   "FooX Foo FooX",
			rep:       Replacement{Old: "Foo", New: "FooX"},
			protected: []string{"FooX"},
			want:      "FooX FooX FooX",
			wantN:     1,
		},
		{
			name:      "skips partial overlap",
			content:   "a.FooX",
			rep:       Replacement{Old: "a.Foo", New: "b"},
			protected: []string{"FooX"},
			want:      "a.FooX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := replaceUnprotected(tt.content, tt.rep, tt.protected)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantN, n)
		})
	}
}

func TestContentRule_MissingFileIsSkipped(t *testing.T) {
	tree := memTree(t, nil)

	out, err := ContentRule{Path: "ios/Podfile", Replacements: []Replacement{{Old: "a", New: "b"}}}.Apply(tree)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, out.Status)
	assert.False(t, memExists(t, tree, "ios/Podfile"))
}

func TestContentRule_DirectoryFails(t *testing.T) {
	tree := memTree(t, map[string]string{"ios/Podfile/x": ""})

	_, err := ContentRule{Path: "ios/Podfile", Replacements: []Replacement{{Old: "a", New: "b"}}}.Apply(tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestPathRule(t *testing.T) {
	t.Run("renames directory with contents", func(t *testing.T) {
		tree := memTree(t, map[string]string{"ios/Old/Info.plist": "plist"})

		out, err := PathRule{From: "ios/Old", To: "ios/New"}.Apply(tree)
		require.NoError(t, err)
		assert.Equal(t, StatusMoved, out.Status)
		assert.Equal(t, "ios/New", out.Path)
		assert.Equal(t, "ios/Old", out.From)
		assert.Equal(t, "plist", memRead(t, tree, "ios/New/Info.plist"))
		assert.False(t, memExists(t, tree, "ios/Old"))
	})

	t.Run("missing source is skipped", func(t *testing.T) {
		tree := memTree(t, nil)

		out, err := PathRule{From: "ios/Old", To: "ios/New"}.Apply(tree)
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, out.Status)
	})

	t.Run("same path is unchanged", func(t *testing.T) {
		tree := memTree(t, map[string]string{"ios/Same/a": ""})

		out, err := PathRule{From: "ios/Same", To: "ios/Same"}.Apply(tree)
		require.NoError(t, err)
		assert.Equal(t, StatusUnchanged, out.Status)
	})

	t.Run("existing target fails", func(t *testing.T) {
		tree := memTree(t, map[string]string{"ios/Old/a": "old", "ios/New/b": "new"})

		_, err := PathRule{From: "ios/Old", To: "ios/New"}.Apply(tree)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
		assert.Equal(t, "old", memRead(t, tree, "ios/Old/a"))
	})
}

func TestRelocateRule(t *testing.T) {
	tree := memTree(t, map[string]string{
		"java/org/reactjs/native/example/App/MainActivity.kt": "activity",
		"java/org/keep/Other.kt":                              "other",
	})

	rule := RelocateRule{
		Root: "java",
		From: []string{"org", "reactjs", "native", "example", "App"},
		To:   []string{"com", "myapp"},
	}
	out, err := rule.Apply(tree)
	require.NoError(t, err)

	assert.Equal(t, StatusMoved, out.Status)
	assert.Equal(t, "java/com/myapp", out.Path)
	assert.Equal(t, "java/org/reactjs/native/example/App", out.From)
	assert.Equal(t, []string{"java/org/reactjs/native/example", "java/org/reactjs/native", "java/org/reactjs"}, out.Pruned)

	assert.Equal(t, "activity", memRead(t, tree, "java/com/myapp/MainActivity.kt"))
	assert.False(t, memExists(t, tree, "java/org/reactjs"))
	assert.True(t, memExists(t, tree, "java/org/keep/Other.kt"), "non-empty parents are kept")
}

func TestRelocateRule_MissingSourceIsSkipped(t *testing.T) {
	tree := memTree(t, map[string]string{"java/com/myapp/MainActivity.kt": ""})

	out, err := RelocateRule{Root: "java", From: []string{"org", "App"}, To: []string{"com", "myapp"}}.Apply(tree)
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, out.Status)
}

func TestRelocateRule_TargetExistsFails(t *testing.T) {
	tree := memTree(t, map[string]string{
		"java/org/App/MainActivity.kt":   "old",
		"java/com/myapp/MainActivity.kt": "new",
	})

	_, err := RelocateRule{Root: "java", From: []string{"org", "App"}, To: []string{"com", "myapp"}}.Apply(tree)
	require.Error(t, err)
	assert.Equal(t, "old", memRead(t, tree, "java/org/App/MainActivity.kt"))
}

func TestRelocateRule_Overlapping(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"java/com/app/MainActivity.kt": "activity"})
	tree := OpenTree(dir)

	out, err := RelocateRule{Root: "java", From: []string{"com", "app"}, To: []string{"com"}}.Apply(tree)
	require.NoError(t, err)
	assert.Equal(t, StatusMoved, out.Status)
	assert.Equal(t, "activity", readFile(t, dir, "java/com/MainActivity.kt"))
	assert.NoDirExists(t, dir+"/java/com/app")
	assert.NoDirExists(t, dir+"/java/.rnscaffold-relocate")
}

func TestCompositeRule(t *testing.T) {
	rule := CompositeRule{
		Move:    PathRule{From: "schemes/Old.xcscheme", To: "schemes/New.xcscheme"},
		Content: []Replacement{{Old: "Old", New: "New"}},
	}

	t.Run("renames then rewrites", func(t *testing.T) {
		tree := memTree(t, map[string]string{"schemes/Old.xcscheme": "Old.app"})

		out, err := rule.Apply(tree)
		require.NoError(t, err)
		assert.Equal(t, StatusMoved, out.Status)
		assert.Equal(t, 1, out.Replaced)
		assert.Equal(t, "New.app", memRead(t, tree, "schemes/New.xcscheme"))
		assert.False(t, memExists(t, tree, "schemes/Old.xcscheme"))
	})

	t.Run("content step does not run when rename is skipped", func(t *testing.T) {
		tree := memTree(t, map[string]string{"schemes/New.xcscheme": "Old.app"})

		out, err := rule.Apply(tree)
		require.NoError(t, err)
		assert.Equal(t, StatusSkipped, out.Status)
		assert.Equal(t, "Old.app", memRead(t, tree, "schemes/New.xcscheme"))
	})
}

func TestRuleView(t *testing.T) {
	v := CompositeRule{
		Move:    PathRule{From: "a/Old", To: "a/New"},
		Content: []Replacement{{Old: "Old", New: "New"}},
	}.View()

	assert.Equal(t, KindComposite, v.Kind)
	assert.Equal(t, "a/New", v.Path)
	assert.Equal(t, "a/Old", v.From)
	require.Len(t, v.Then, 1)
	assert.Equal(t, KindContent, v.Then[0].Kind)
}
