package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderFileTree(t *testing.T) {
	out := stripAnsi(RenderFileTree("MyApp", map[string]string{
		"package.json":            "modified",
		"ios/MyApp/Info.plist":    "modified",
		"ios/MyApp.xcodeproj":     "moved",
		"android/settings.gradle": "modified",
	}))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "MyApp/", lines[0])
	assert.Contains(t, out, "android/")
	assert.Contains(t, out, "└── package.json")

	// directories sort before files
	assert.Less(t, strings.Index(out, "ios/"), strings.Index(out, "package.json"))
}

func TestRenderFileTree_Empty(t *testing.T) {
	assert.Empty(t, RenderFileTree("MyApp", nil))
}
