package mullvad

import (
	"bufio"
	"fmt"
	"strings"
)

// VersionInfo holds the client's version report.
type VersionInfo struct {
	// Current is the locally installed client version.
	Current string
	// Latest is the newest version advertised by the vendor.
	Latest string
}

// UpToDate reports whether the installed version matches the latest
// advertised one. Equality is the only comparison the report supports;
// version strings are opaque.
func (v VersionInfo) UpToDate() bool {
	return v.Current == v.Latest
}

// ParseVersion extracts current and latest versions from the client's
// version report. The report is a set of "Key : value" lines; parsing is
// keyed on the labels rather than line positions so reordered or extended
// output still parses.
func ParseVersion(output string) (VersionInfo, error) {
	var info VersionInfo

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch {
		case key == "current version":
			info.Current = value
		case strings.HasPrefix(key, "latest"):
			// Matches "Latest version" and "Latest stable version".
			info.Latest = value
		}
	}

	if info.Current == "" {
		return info, fmt.Errorf("version report missing current version: %q", output)
	}
	if info.Latest == "" {
		// Some client builds only advertise an upgrade when one exists.
		info.Latest = info.Current
	}

	return info, nil
}
