package ai

import "strings"

// Kind identifies a backend variant. The set is closed.
type Kind string

const (
	KindUnknown Kind = ""
	KindRemote  Kind = "openai"
	KindLocal   Kind = "llama"
)

// Kinds lists the supported backends in display order.
func Kinds() []Kind {
	return []Kind{KindRemote, KindLocal}
}

// ParseKind maps a user-facing selector to a Kind. Matching ignores case and
// surrounding whitespace; "remote" and "local" are accepted as aliases.
func ParseKind(selector string) Kind {
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "openai", "remote":
		return KindRemote
	case "llama", "local":
		return KindLocal
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Valid reports whether k is one of the supported backends.
func (k Kind) Valid() bool {
	return k == KindRemote || k == KindLocal
}
