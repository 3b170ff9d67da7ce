package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func boolPtr(v bool) *bool { return &v }

func TestMergeDefaultsFillsUnset(t *testing.T) {
	d := Defaults{AssetPatterns: []string{"*.apk"}, IncludePrerelease: boolPtr(true)}
	got := MergeDefaults(d, Project{Name: "p", Repo: "o/r", TargetDir: "x"})

	want := Project{
		Name:              "p",
		Repo:              "o/r",
		TargetDir:         "x",
		Kind:              KindRelease,
		AssetPatterns:     []string{"*.apk"},
		IncludePrerelease: boolPtr(true),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MergeDefaults mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeDefaultsProjectWins(t *testing.T) {
	d := Defaults{AssetPatterns: []string{"*.apk"}, IncludePrerelease: boolPtr(true)}
	p := Project{
		Kind:              KindAction,
		AssetPatterns:     []string{"core-*"},
		IncludePrerelease: boolPtr(false),
	}
	got := MergeDefaults(d, p)

	if got.Kind != KindAction {
		t.Errorf("kind = %q", got.Kind)
	}
	if diff := cmp.Diff([]string{"core-*"}, got.AssetPatterns); diff != "" {
		t.Errorf("asset_patterns (-want +got):\n%s", diff)
	}
	if got.Prerelease() {
		t.Error("project include_prerelease=false should win")
	}
}

func TestMergeDefaultsBuiltinPatterns(t *testing.T) {
	got := MergeDefaults(Defaults{}, Project{})
	if diff := cmp.Diff([]string{"*"}, got.AssetPatterns); diff != "" {
		t.Errorf("asset_patterns (-want +got):\n%s", diff)
	}
	if got.Prerelease() {
		t.Error("prerelease should default to false")
	}
}

func TestMergeDefaultsDoesNotAlias(t *testing.T) {
	d := Defaults{AssetPatterns: []string{"a"}, IncludePrerelease: boolPtr(true)}
	got := MergeDefaults(d, Project{})
	got.AssetPatterns[0] = "changed"
	*got.IncludePrerelease = false

	if d.AssetPatterns[0] != "a" {
		t.Error("defaults patterns were modified through the merged project")
	}
	if !*d.IncludePrerelease {
		t.Error("defaults include_prerelease was modified through the merged project")
	}
}
