package internal

import (
	"regexp"
	"strconv"
	"strings"
)

var badPath = regexp.MustCompile(`[^\p{L}\p{N}_.$]`)

// parsePath compiles a dot-delimited path into a function reading it from a
// root value. Numeric segments index arrays. Returns false for paths with
// characters other than letters, digits, underscores, dots and '$'.
func parsePath(path string) (func(any) any, bool) {
	if badPath.MatchString(path) {
		return nil, false
	}

	segments := strings.Split(path, ".")

	return func(root any) any {
		value := root

		for _, segment := range segments {
			switch v := value.(type) {
			case *Object:
				if v == nil {
					return nil
				}
				value = v.Get(segment)

			case *Array:
				i, err := strconv.Atoi(segment)
				if v == nil || err != nil {
					return nil
				}
				value = v.At(i)

			default:
				return nil
			}
		}

		return value
	}, true
}
