package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Compare orders two release tags of the form [v]major.minor.patch. Anything
// after a '-' or '+' is ignored. It returns 1 when a is newer, -1 when b is
// newer and 0 otherwise.
func Compare(a, b string) (int, error) {
	av, err := parseTag(a)
	if err != nil {
		return 0, err
	}

	bv, err := parseTag(b)
	if err != nil {
		return 0, err
	}

	for i := range av {
		if c := cmp.Compare(av[i], bv[i]); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

func parseTag(tag string) ([3]int, error) {
	var v [3]int

	core, _, _ := strings.Cut(strings.TrimPrefix(strings.TrimSpace(tag), "v"), "-")
	core, _, _ = strings.Cut(core, "+")

	parts := strings.Split(core, ".")
	if len(parts) != len(v) {
		return v, fmt.Errorf("malformed version %q", tag)
	}

	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return v, fmt.Errorf("malformed version %q", tag)
		}
		v[i] = n
	}
	return v, nil
}
