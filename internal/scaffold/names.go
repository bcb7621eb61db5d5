package scaffold

import (
	"fmt"
	"strings"
)

// MaxNameLength is the longest resource name accepted, matching the DNS
// label limit.
const MaxNameLength = 63

type InvalidResourceNameError struct {
	Name   string
	Reason string
}

func (e *InvalidResourceNameError) Error() string {
	return fmt.Sprintf("invalid resource name '%s': %s", e.Name, e.Reason)
}

// SanitizeResourceName turns an arbitrary string, typically a directory
// name, into a candidate resource name. The result may still be invalid,
// for instance when nothing usable remains.
func SanitizeResourceName(raw string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(raw) {
		if c == ' ' || c == '_' {
			c = '-'
		}
		if isLowerAlnum(c) || c == '-' {
			b.WriteRune(c)
		}
	}

	var out strings.Builder
	prevHyphen := false
	for _, c := range strings.Trim(b.String(), "-") {
		if c == '-' {
			if !prevHyphen {
				out.WriteRune(c)
			}
			prevHyphen = true
			continue
		}
		out.WriteRune(c)
		prevHyphen = false
	}

	s := out.String()
	if len(s) > MaxNameLength {
		s = s[:MaxNameLength]
	}
	return strings.TrimRight(s, "-")
}

func ValidateResourceName(name string) error {
	invalid := func(reason string) error {
		return &InvalidResourceNameError{Name: name, Reason: reason}
	}
	if name == "" {
		return invalid("name must not be empty")
	}
	if len(name) > MaxNameLength {
		return invalid(fmt.Sprintf("name must be no more than %d characters, got %d", MaxNameLength, len(name)))
	}
	for _, c := range name {
		if !isLowerAlnum(c) && c != '-' {
			return invalid("name must contain only lowercase alphanumeric characters or '-'")
		}
	}
	if !isLowerAlnum(rune(name[0])) {
		return invalid("name must start with an alphanumeric character")
	}
	if !isLowerAlnum(rune(name[len(name)-1])) {
		return invalid("name must end with an alphanumeric character")
	}
	return nil
}

func isLowerAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
