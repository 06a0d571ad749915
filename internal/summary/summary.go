// Package summary holds the leaf value summarizers: one-line descriptions
// that need no layout reconstruction, only a couple of field reads or a
// type-name rewrite.
package summary

import (
	"fmt"
	"regexp"
	"strconv"

	"memlens/internal/value"
)

var (
	oneArgRE = regexp.MustCompile(`^([^<]+)<([^,]*),.*`)
	twoArgRE = regexp.MustCompile(`^([^<]+)<([^,]*),\s*([^,]*),.*`)
)

// TrimNamespace strips the path qualifier from a fully qualified name:
// "alloc::string::String" becomes "String".
func TrimNamespace(name string) string {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == ':' && name[i-1] == ':' {
			return name[i+1:]
		}
	}
	return name
}

// OneArg summarizes a one-argument generic (the trailing hasher/allocator
// arguments are dropped): "HashSet<String> size=3". Reports false for names
// that do not parse; an unparsable name is not an error, the host just shows
// its default summary.
func OneArg(typeName string, count int) (string, bool) {
	m := oneArgRE.FindStringSubmatch(typeName)
	if m == nil {
		return "", false
	}
	return TrimNamespace(m[1]) + "<" + TrimNamespace(m[2]) + "> size=" + strconv.Itoa(count), true
}

// TwoArg summarizes a two-argument generic: "HashMap<i32, String> size=7".
func TwoArg(typeName string, count int) (string, bool) {
	m := twoArgRE.FindStringSubmatch(typeName)
	if m == nil {
		return "", false
	}
	return TrimNamespace(m[1]) + "<" + TrimNamespace(m[2]) + ", " + TrimNamespace(m[3]) + "> size=" + strconv.Itoa(count), true
}

// Instant formats a unix-platform Instant: a timespec behind a `t` field,
// with the nanoseconds wrapped in a single-member tuple struct.
func Instant(v *value.Value) (string, error) {
	t, err := v.Child("t")
	if err != nil {
		return "", err
	}
	secField, err := t.Child("tv_sec")
	if err != nil {
		return "", err
	}
	sec, err := secField.Uint()
	if err != nil {
		return "", err
	}
	nsecField, err := t.Child("tv_nsec")
	if err != nil {
		return "", err
	}
	nsecInner, err := nsecField.Child("0")
	if err != nil {
		return "", err
	}
	nsec, err := nsecInner.Uint()
	if err != nil {
		return "", err
	}
	tv := float64(sec) + float64(nsec)/1e9
	return fmt.Sprintf("unix instant(%v)", tv), nil
}
