// Package proto implements the RouterOS sentence model (reply kinds, tag
// words, attribute words) and a schema-driven decoder that maps a sentence's
// attribute words onto a tagged Go struct, the way a hand-written serde
// Deserializer would for the same wire syntax.
package proto

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind identifies the leading word of a sentence.
type Kind int

const (
	// KindUnknown is returned for a sentence whose leading word is not one
	// of the four recognised reply markers.
	KindUnknown Kind = iota
	KindDone
	KindReply
	KindTrap
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindDone:
		return "!done"
	case KindReply:
		return "!re"
	case KindTrap:
		return "!trap"
	case KindFatal:
		return "!fatal"
	default:
		return "!unknown"
	}
}

// TrapCategory is the strict 0..=7 category code carried on a !trap
// sentence's category attribute, per the RouterOS API's fixed taxonomy.
type TrapCategory int

const (
	MissingItemOrCommand TrapCategory = iota
	ArgumentValueFailure
	ExecutionInterrupted
	ScriptingRelated
	GeneralError
	APIRelated
	TTYRelated
	ReturnValue
)

// ParseTrapCategory validates n against the fixed 0..=7 range, refusing to
// loosely coerce out-of-range values the way a plain numeric parse would.
func ParseTrapCategory(n int) (TrapCategory, error) {
	if n < int(MissingItemOrCommand) || n > int(ReturnValue) {
		return 0, errors.Errorf("proto: trap category %d out of range 0..=7", n)
	}
	return TrapCategory(n), nil
}

// Sentence is a parsed but not-yet-decoded reply: its kind, optional tag,
// and its ordered attribute words (each "name", "value" pair, value empty
// for flag-only attributes).
type Sentence struct {
	Kind  Kind
	Tag   string
	Attrs []Attr
}

// Attr is a single =name=value (or .name=value) attribute word.
type Attr struct {
	Name  string
	Value string
}

// Get returns the value of the first attribute named name.
func (s *Sentence) Get(name string) (string, bool) {
	for _, a := range s.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// ParseSentence classifies a raw word sequence (as produced by
// wire.Decoder.ReadSentence) into a Sentence, skipping the tag word and
// recognising the four reply markers.
func ParseSentence(words []string) (*Sentence, error) {
	if len(words) == 0 {
		return nil, errors.New("proto: empty sentence")
	}

	s := &Sentence{Kind: kindOf(words[0])}
	if s.Kind == KindUnknown {
		return nil, errors.Errorf("proto: unrecognised reply word %q", words[0])
	}

	// !fatal carries its message as a single bare word, not an =key=value
	// attribute, so it never reaches splitAttr.
	if s.Kind == KindFatal {
		if len(words) > 1 {
			s.Attrs = append(s.Attrs, Attr{Name: "message", Value: words[1]})
		}
		return s, nil
	}

	for _, w := range words[1:] {
		if tag, ok := cutTag(w); ok {
			s.Tag = tag
			continue
		}
		name, value, err := splitAttr(w)
		if err != nil {
			return nil, err
		}
		s.Attrs = append(s.Attrs, Attr{Name: name, Value: value})
	}
	return s, nil
}

func kindOf(w string) Kind {
	switch w {
	case "!done":
		return KindDone
	case "!re":
		return KindReply
	case "!trap":
		return KindTrap
	case "!fatal":
		return KindFatal
	default:
		return KindUnknown
	}
}

func cutTag(w string) (tag string, ok bool) {
	const prefix = ".tag="
	if strings.HasPrefix(w, prefix) {
		return w[len(prefix):], true
	}
	return "", false
}

// splitAttr splits an attribute word of the form "=name=value", ".name=value"
// or a bare flag word "=name" (empty value) on its first post-marker "=".
func splitAttr(w string) (name, value string, err error) {
	if w == "" {
		return "", "", errors.New("proto: empty attribute word")
	}
	prefix := w[0]
	if prefix != '=' && prefix != '.' {
		return "", "", errors.Errorf("proto: unrecognised attribute word %q", w)
	}

	rest := w[1:]
	idx := strings.IndexByte(rest, '=')
	name, value = rest, ""
	if idx >= 0 {
		name, value = rest[:idx], rest[idx+1:]
	}
	if prefix == '.' {
		// dot-prefixed keys (".id", ".nextid") keep their marker as part of
		// the name; "=" is just the default attribute marker and is dropped.
		name = "." + name
	}
	return name, value, nil
}

// ParseUint is a small helper for scalar attribute conversions shared by
// package model; it mirrors the strict decimal parsing spec.md requires
// (no hex/octal prefixes, no leading sign for unsigned fields).
func ParseUint(s string, bitSize int) (uint64, error) {
	return strconv.ParseUint(s, 10, bitSize)
}

// ParseBool parses the literal "true"/"false" RouterOS encodes booleans as.
func ParseBool(s string) (bool, error) {
	switch s {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, errors.Errorf("proto: invalid bool literal %q", s)
	}
}
