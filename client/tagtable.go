package client

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/pkg/errors"
)

// tagTable is the shared tag -> sink map a Client's reader loop consults to
// route each incoming sentence, and its writer side consults to allocate a
// fresh tag for each outgoing call. Tags are random rather than sequential,
// matching next_tag's behaviour in the source this module is grounded on,
// so a bug that reuses a tag too early surfaces quickly under test instead
// of hiding behind predictable allocation order.
type tagTable struct {
	mu   sync.Mutex
	next map[string]sink
}

func newTagTable() *tagTable {
	return &tagTable{next: make(map[string]sink)}
}

// alloc reserves a fresh, currently-unused tag and registers s under it.
func (t *tagTable) alloc(s sink) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for attempt := 0; attempt < 65535; attempt++ {
		tag, err := randomTag()
		if err != nil {
			return "", err
		}
		if _, taken := t.next[tag]; taken {
			continue
		}
		t.next[tag] = s
		return tag, nil
	}
	return "", errors.New("client: no free tag after exhausting the tag space")
}

// remove deregisters tag, e.g. after its sink receives !done.
func (t *tagTable) remove(tag string) {
	t.mu.Lock()
	delete(t.next, tag)
	t.mu.Unlock()
}

// lookup returns the sink registered for tag, if any.
func (t *tagTable) lookup(tag string) (sink, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.next[tag]
	return s, ok
}

// drainAll returns every registered sink and clears the table, used when
// the reader loop exits (on !fatal or a framing/I-O error) and every
// pending call must be unblocked.
func (t *tagTable) drainAll() []sink {
	t.mu.Lock()
	defer t.mu.Unlock()
	sinks := make([]sink, 0, len(t.next))
	for _, s := range t.next {
		sinks = append(sinks, s)
	}
	t.next = make(map[string]sink)
	return sinks
}

func randomTag() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(65534))
	if err != nil {
		return "", errors.Wrap(err, "client: generating tag")
	}
	return big.NewInt(0).Add(n, big.NewInt(1)).String(), nil
}
