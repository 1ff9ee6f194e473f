// Package testutil provides test helpers for CLI tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file with the given content under dir, creating
// parent directories as needed. name uses forward slashes.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// WriteTree writes every file of files under dir.
func WriteTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		WriteFile(t, dir, name, content)
	}
}

// ReadFile returns the content of name under dir, failing the test if it
// cannot be read.
func ReadFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("failed to read %s: %v", name, err)
	}
	return string(data)
}

// BoilerplateFiles is a trimmed copy of the React Native boilerplate layout:
// one file of every kind the rewrite touches.
func BoilerplateFiles() map[string]string {
	return map[string]string{
		"package.json": "{\n  \"name\": \"ReactNativeBoilerplate\",\n  \"dependencies\": {\n    \"@my-rn-boilerplate/store\": \"*\"\n  }\n}\n",
		"app.json":     "{\"name\": \"ReactNativeBoilerplate\", \"displayName\": \"ReactNativeBoilerplate\"}\n",
		"android/app/build.gradle": "namespace \"com.reactnativeboilerplate\"\n" +
			"applicationId \"org.reactjs.native.example.ReactNativeBoilerplate\"\n",
		"android/app/src/main/java/org/reactjs/native/example/ReactNativeBoilerplate/MainActivity.kt": "package com.reactnativeboilerplate\n",
		"ios/ReactNativeBoilerplate/Info.plist":                                                       "<string>ReactNativeBoilerplate</string>\n",
		"ios/ReactNativeBoilerplate/LaunchScreen.storyboard":                                          "<label text=\"ReactNativeBoilerplate\"/>\n",
		"ios/ReactNativeBoilerplate.xcodeproj/project.pbxproj":                                        "PRODUCT_BUNDLE_IDENTIFIER = \"org.reactjs.native.example.$(PRODUCT_NAME:rfc1034identifier)\";\n",
		"App.tsx": "import {store} from '@my-rn-boilerplate/store';\n",
	}
}

// BoilerplateDir writes BoilerplateFiles into a fresh temporary directory.
func BoilerplateDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	WriteTree(t, dir, BoilerplateFiles())
	return dir
}
