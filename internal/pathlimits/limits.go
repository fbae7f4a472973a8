package pathlimits

import (
	"runtime"
	"strings"
	"unicode/utf8"
)

// Limits bounds candidate filenames and paths. When ByteCounted is set the
// filesystem measures names and paths in encoded bytes, so a name must also
// fit the ceilings in bytes.
type Limits struct {
	MaxNameLen  int
	MaxPathLen  int
	ByteCounted bool
}

// Unit names the measure a length was taken in.
type Unit string

const (
	Characters Unit = "characters"
	Bytes      Unit = "bytes"
)

const (
	defaultMaxNameLen = 255

	linuxMaxPathLen   = 4096
	darwinMaxPathLen  = 1024
	windowsMaxPathLen = 259
)

// Host returns the limits for the running platform.
func Host() Limits {
	return For(runtime.GOOS)
}

// For returns the limits for the named GOOS value.
func For(goos string) Limits {
	switch goos {
	case "windows":
		return Limits{MaxNameLen: defaultMaxNameLen, MaxPathLen: windowsMaxPathLen}
	case "darwin", "ios":
		return Limits{MaxNameLen: defaultMaxNameLen, MaxPathLen: darwinMaxPathLen, ByteCounted: true}
	default:
		return Limits{MaxNameLen: defaultMaxNameLen, MaxPathLen: linuxMaxPathLen, ByteCounted: true}
	}
}

// WithOverrides replaces any positive value in the receiver with the override.
func (l Limits) WithOverrides(maxName, maxPath int) Limits {
	if maxName > 0 {
		l.MaxNameLen = maxName
	}
	if maxPath > 0 {
		l.MaxPathLen = maxPath
	}
	return l
}

// NameLen reports the length of a filename in characters.
func NameLen(name string) int {
	return utf8.RuneCountInString(name)
}

// PathLen reports the length of a path in characters.
func PathLen(path string) int {
	return utf8.RuneCountInString(path)
}

// Exceeds checks s against max in characters and, for byte-counted limits,
// in bytes. It returns the exceeded length and its unit.
func (l Limits) Exceeds(s string, max int) (int, Unit, bool) {
	if max <= 0 {
		return 0, "", false
	}
	if n := utf8.RuneCountInString(s); n > max {
		return n, Characters, true
	}
	if l.ByteCounted && len(s) > max {
		return len(s), Bytes, true
	}
	return 0, "", false
}

// ReservedChars returns the characters that may not appear in a path
// component on goos, beyond control characters.
func ReservedChars(goos string) string {
	switch goos {
	case "windows":
		return `<>:"/\|?*`
	case "darwin", "ios":
		return "/:"
	default:
		return "/"
	}
}

// IsReserved reports whether r is unusable in a filename on the host.
func IsReserved(r rune) bool {
	return isReserved(runtime.GOOS, r)
}

func isReserved(goos string, r rune) bool {
	if r == 0 {
		return true
	}
	if goos == "windows" && r < 0x20 {
		return true
	}
	return strings.ContainsRune(ReservedChars(goos), r)
}

// ContainsReserved reports whether s holds any reserved character for the host.
func ContainsReserved(s string) bool {
	return ContainsReservedFor(runtime.GOOS, s)
}

// ContainsReservedFor is ContainsReserved for an explicit GOOS value.
func ContainsReservedFor(goos, s string) bool {
	for _, r := range s {
		if isReserved(goos, r) {
			return true
		}
	}
	return false
}
