package rewrite

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/rnscaffold/cli/internal/identity"
	"github.com/rnscaffold/cli/internal/templates"
)

const (
	oldName   = "ReactNativeBoilerplate"
	oldBundle = "org.reactjs.native.example.ReactNativeBoilerplate"
	legacyID  = "com.reactnativeboilerplate"
	oldScope  = "@my-rn-boilerplate"
)

// templateFiles mirrors the parts of the boilerplate the rewrite touches.
var templateFiles = map[string]string{
	"package.json": `{
  "name": "ReactNativeBoilerplate",
  "dependencies": {
    "@my-rn-boilerplate/store": "*",
    "@my-rn-boilerplate/api-client": "*"
  }
}
`,
	"app.json":    `{"name": "ReactNativeBoilerplate", "displayName": "ReactNativeBoilerplate"}` + "\n",
	"index.js":    "AppRegistry.registerComponent('ReactNativeBoilerplate', () => App);\n",
	"App.tsx":     "import {store} from '@my-rn-boilerplate/store';\n",
	"ios/Podfile": "target 'ReactNativeBoilerplate' do\nend\n",
	"ios/ReactNativeBoilerplate.xcodeproj/project.pbxproj": "PRODUCT_BUNDLE_IDENTIFIER = org.reactjs.native.example.ReactNativeBoilerplate;\n" +
		"PRODUCT_NAME = ReactNativeBoilerplate;\n",
	"ios/ReactNativeBoilerplate.xcodeproj/xcshareddata/xcschemes/ReactNativeBoilerplate.xcscheme":    "<BuildableReference BuildableName = \"ReactNativeBoilerplate.app\"/>\n",
	"ios/ReactNativeBoilerplate.xcworkspace/contents.xcworkspacedata":                                "<FileRef location = \"group:ReactNativeBoilerplate.xcodeproj\"/>\n",
	"ios/ReactNativeBoilerplate/Info.plist":                                                          "<string>ReactNativeBoilerplate</string>\n",
	"ios/ReactNativeBoilerplate/AppDelegate.swift":                                                   "withModuleName: \"ReactNativeBoilerplate\"\n",
	"ios/ReactNativeBoilerplate/LaunchScreen.storyboard":                                             "<label text=\"ReactNativeBoilerplate\"/>\n",
	"android/settings.gradle":                                                                        "rootProject.name = 'ReactNativeBoilerplate'\n",
	"android/app/build.gradle":                                                                       "namespace \"com.reactnativeboilerplate\"\napplicationId \"com.reactnativeboilerplate\"\n",
	"android/app/src/main/AndroidManifest.xml":                                                       "<manifest package=\"com.reactnativeboilerplate\"/>\n",
	"android/app/src/main/res/values/strings.xml":                                                    "<string name=\"app_name\">ReactNativeBoilerplate</string>\n",
	"android/app/src/main/java/org/reactjs/native/example/ReactNativeBoilerplate/MainActivity.kt":    "package com.reactnativeboilerplate\n\noverride fun getMainComponentName(): String = \"ReactNativeBoilerplate\"\n",
	"android/app/src/main/java/org/reactjs/native/example/ReactNativeBoilerplate/MainApplication.kt": "package com.reactnativeboilerplate\n",
	"src/screens/HomeScreen.tsx":                                                                     "import {usePhotos} from '@my-rn-boilerplate/api-client';\n",
	"src/screens/SettingsScreen.tsx":                                                                 "import {useStore} from '@my-rn-boilerplate/store';\n",
	"src/screens/InfiniteListScreen.tsx":                                                             "import {useInfinite} from '@my-rn-boilerplate/api-client';\n",
	"src/hooks/usePhotos.ts":                                                                         "import {client} from '@my-rn-boilerplate/api-client';\n",
	"src/api/index.ts":                                                                               "export * from '@my-rn-boilerplate/api-client';\n",
	"packages/store/package.json":                                                                    `{"name": "@my-rn-boilerplate/store"}` + "\n",
	"packages/api-client/package.json":                                                               `{"name": "@my-rn-boilerplate/api-client"}` + "\n",
	"packages/query-provider/package.json":                                                           `{"name": "@my-rn-boilerplate/query-provider"}` + "\n",
	"metro.config.js":                                                                                "watchFolders: ['@my-rn-boilerplate']\n",
	"android/app/src/main/res/mipmap/ic.png":                                                         "\x89PNG\x00\x01",
}

// writeTemplate materializes templateFiles under a fresh temp dir.
func writeTemplate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, templateFiles)
	return dir
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
}

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func defaultPlan(t *testing.T, name string) (*templates.Descriptor, identity.Set, []Step) {
	t.Helper()
	d, err := templates.Default()
	require.NoError(t, err)
	ids, err := identity.Derive(name, d.Identifiers)
	require.NoError(t, err)
	return d, ids, Plan(d, ids)
}

// quietEngine discards step logging.
func quietEngine() *Engine {
	return NewEngine(WithLogger(log.New(io.Discard)))
}
