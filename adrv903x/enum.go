package adrv903x

import (
	"fmt"
	"strings"
)

type enumValue interface {
	~uint8 | ~int | ~uint32
}

func enumString[T enumValue](v T, names map[T]string) string {
	if n, ok := names[v]; ok {
		return n
	}
	return fmt.Sprintf("unknown(%d)", int(v))
}

func enumText[T enumValue](v T, names map[T]string, kind string) ([]byte, error) {
	if n, ok := names[v]; ok {
		return []byte(n), nil
	}
	return nil, fmt.Errorf("invalid %s %d", kind, int(v))
}

func parseEnum[T enumValue](text []byte, names map[T]string, kind string) (T, error) {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for v, n := range names {
		if n == s {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", kind, s)
}

func validEnum[T enumValue](v T, names map[T]string) bool {
	_, ok := names[v]
	return ok
}
