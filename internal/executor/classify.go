package executor

import (
	"strings"

	"github.com/keyrun-app/keyrun/internal/types"
)

// Schemes that mark a target as a URL without carrying "://".
var bareSchemes = []string{"mailto:", "tel:"}

// Classify decides how a target string should be launched. URLs and
// path-shaped targets go through the OS shell handler; anything else is a
// bare executable name resolved via PATH.
//
// The order matters: URLs contain slashes, so the scheme check runs before
// the separator check.
func Classify(target string) types.TargetKind {
	if isURL(target) {
		return types.TargetURL
	}
	if isPathShaped(target) {
		return types.TargetPath
	}
	return types.TargetExecutable
}

// isURL reports whether target starts with a URL scheme: either
// "<scheme>://" with a well-formed scheme, or a known scheme that takes no
// authority part (mailto, tel).
func isURL(target string) bool {
	lower := strings.ToLower(target)
	for _, s := range bareSchemes {
		if strings.HasPrefix(lower, s) && len(lower) > len(s) {
			return true
		}
	}
	idx := strings.Index(lower, "://")
	if idx < 1 {
		return false
	}
	return validScheme(lower[:idx])
}

// validScheme checks RFC 3986 scheme shape: ALPHA *(ALPHA / DIGIT / "+" /
// "-" / "."). A drive letter like "c" is a valid scheme too, but drive
// paths use ":\" or ":/" rather than "://", so they never reach here.
func validScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// isPathShaped reports whether target looks like a filesystem location:
// absolute, home-relative, drive-letter or UNC rooted, or carrying any
// path separator.
func isPathShaped(target string) bool {
	if target == "" {
		return false
	}
	if target[0] == '/' || target[0] == '~' {
		return true
	}
	if strings.HasPrefix(target, `\\`) {
		return true
	}
	if isDriveRooted(target) {
		return true
	}
	return strings.ContainsAny(target, `/\`)
}

// isDriveRooted matches "C:", "C:\..." and "C:/..." spellings.
func isDriveRooted(target string) bool {
	if len(target) < 2 || target[1] != ':' {
		return false
	}
	c := target[0]
	if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
		return false
	}
	return len(target) == 2 || target[2] == '\\' || target[2] == '/'
}
