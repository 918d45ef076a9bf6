// Package version holds the build version of the athena server.
package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is the current server version, bumped on every release.
var Version = "0.3.1"

// DevVersion is the version suffix used in dev mode.
var DevVersion = fmt.Sprintf("%s-dev", Version)

func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}

// IsVersionGreaterOrEqualThan returns true if version is greater than or equal to target.
func IsVersionGreaterOrEqualThan(version, target string) bool {
	return compareVersion(version, target) >= 0
}

// IsVersionGreaterThan returns true if version is greater than target.
func IsVersionGreaterThan(version, target string) bool {
	return compareVersion(version, target) > 0
}

func compareVersion(a, b string) int {
	as := strings.Split(strings.TrimSuffix(a, "-dev"), ".")
	bs := strings.Split(strings.TrimSuffix(b, "-dev"), ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		ai, _ := strconv.Atoi(as[i])
		bi, _ := strconv.Atoi(bs[i])
		if ai != bi {
			if ai > bi {
				return 1
			}
			return -1
		}
	}
	return len(as) - len(bs)
}
