package routerostest

import (
	"strconv"
	"strings"
)

// Tag extracts the .tag value from a sentence received from the client, as
// sent by client.buildWords.
func Tag(words []string) string {
	for _, w := range words {
		if strings.HasPrefix(w, ".tag=") {
			return w[len(".tag="):]
		}
	}
	return ""
}

// Reply builds a "!re" sentence for tag carrying the given =key=value
// attribute pairs (an even-length, key1, value1, key2, value2, ... list).
func Reply(tag string, kv ...string) []string {
	return sentence("!re", tag, kv)
}

// Done builds a "!done" sentence for tag.
func Done(tag string) []string {
	return sentence("!done", tag, nil)
}

// Trap builds a "!trap" sentence for tag with the given category and
// message.
func Trap(tag string, category int, message string) []string {
	return sentence("!trap", tag, []string{"category", itoa(category), "message", message})
}

// Fatal builds a "!fatal" sentence carrying message; RouterOS sends this
// with no tag, immediately before closing the connection.
func Fatal(message string) []string {
	return []string{"!fatal", message}
}

func sentence(kind, tag string, kv []string) []string {
	words := []string{kind}
	if tag != "" {
		words = append(words, ".tag="+tag)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		words = append(words, "="+kv[i]+"="+kv[i+1])
	}
	return words
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
