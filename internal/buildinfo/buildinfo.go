// Package buildinfo reports the version baked into the binary.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var readBuildInfo = debug.ReadBuildInfo

// Version returns the module version or "dev" when unset.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	return "dev"
}

// Tags returns the build tags recorded at compile time, if any.
func Tags() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == "-tags" {
			return setting.Value
		}
	}
	return ""
}

// VersionWithTags returns the version string, with tags appended when
// present.
func VersionWithTags() string {
	version := Version()
	if tags := Tags(); tags != "" {
		return fmt.Sprintf("%s (tags: %s)", version, tags)
	}
	return version
}
