package buildinfo

import (
	"runtime/debug"
	"testing"
)

func withBuildInfo(t *testing.T, info *debug.BuildInfo, ok bool) {
	t.Helper()
	orig := readBuildInfo
	t.Cleanup(func() { readBuildInfo = orig })
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
}

func TestVersionUnavailable(t *testing.T) {
	withBuildInfo(t, nil, false)
	if got := Version(); got != "dev" {
		t.Fatalf("Version() = %q, want dev", got)
	}
}

func TestVersionDevel(t *testing.T) {
	info := &debug.BuildInfo{}
	info.Main.Version = "(devel)"
	withBuildInfo(t, info, true)
	if got := Version(); got != "dev" {
		t.Fatalf("Version() = %q, want dev", got)
	}
}

func TestVersionWithTags(t *testing.T) {
	info := &debug.BuildInfo{
		Settings: []debug.BuildSetting{{Key: "-tags", Value: "netgo"}},
	}
	info.Main.Version = "v1.2.3"
	withBuildInfo(t, info, true)
	if got := VersionWithTags(); got != "v1.2.3 (tags: netgo)" {
		t.Fatalf("VersionWithTags() = %q", got)
	}
}

func TestVersionWithoutTags(t *testing.T) {
	info := &debug.BuildInfo{}
	info.Main.Version = "v0.1.0"
	withBuildInfo(t, info, true)
	if got := VersionWithTags(); got != "v0.1.0" {
		t.Fatalf("VersionWithTags() = %q", got)
	}
}
