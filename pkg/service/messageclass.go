package service

import (
	"strings"

	"github.com/marmos91/dittostore/pkg/store"
)

// MaxMessageClassLength excludes the terminating null of the wire form.
const MaxMessageClassLength = 254

// ValidateMessageClass checks message class syntax.
//
// A class is printable ASCII (0x20-0x7E), at most MaxMessageClassLength
// characters, does not start or end with a period and has no empty
// segments. The empty string is valid and names the default row.
func ValidateMessageClass(class string) error {
	if class == "" {
		return nil
	}
	if len(class) > MaxMessageClassLength {
		return store.NewInvalidParameterError("message class is too long")
	}
	for i := 0; i < len(class); i++ {
		if c := class[i]; c < 0x20 || c > 0x7E {
			return store.NewInvalidParameterError("message class contains a non printable character")
		}
	}
	if class[0] == '.' || class[len(class)-1] == '.' || strings.Contains(class, "..") {
		return store.NewInvalidParameterError("message class has an empty segment")
	}
	return nil
}

// classMatches reports whether a stored row class covers class: equal, a
// whole-segment prefix of it, or the empty default class. Both arguments are
// already folded.
func classMatches(rowClass, class string) bool {
	if rowClass == "" || rowClass == class {
		return true
	}
	return strings.HasPrefix(class, rowClass) && class[len(rowClass)] == '.'
}

func isProtectedClass(folded string) bool {
	return folded == store.ClassIPM || folded == store.ClassReport
}
