// Package version checks GitHub for newer releases of reel.
package version

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// parse reads "v1.2.3" or "1.2.3-rc.1" into its numeric core. Pre-release suffixes are ignored.
func parse(s string) ([3]int, error) {
	var v [3]int

	core, _, _ := strings.Cut(strings.TrimPrefix(s, "v"), "-")
	parts := strings.Split(core, ".")
	if len(parts) != len(v) {
		return v, fmt.Errorf("version %q: expected major.minor.patch", s)
	}

	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return v, fmt.Errorf("version %q: invalid number %q", s, part)
		}
		v[i] = n
	}
	return v, nil
}

// Compare returns 1 if a is newer than b, -1 if older and 0 if both name the same release.
func Compare(a, b string) (int, error) {
	av, err := parse(a)
	if err != nil {
		return 0, err
	}

	bv, err := parse(b)
	if err != nil {
		return 0, err
	}

	return slices.Compare(av[:], bv[:]), nil
}
