package macro

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Counters is numbering state shared by every document of one run.
type Counters struct {
	captions  int
	Numbering Numbering
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

// NextCaption returns the next image caption number, starting at 1.
func (c *Counters) NextCaption() int {
	c.captions++
	return c.captions
}

// Captions returns how many caption numbers were handed out.
func (c *Counters) Captions() int {
	return c.captions
}

// Numbering produces hierarchical labels like "2.1.3".
//
// A label path names one counter per level. Counters are keyed by the
// current values of their ancestors, so advancing a parent starts its
// children over from one.
type Numbering struct {
	counts map[string]int
}

// key builds the counter key of the last label in labels.
func (n *Numbering) key(labels []string) (string, []int, error) {
	var b strings.Builder
	values := make([]int, 0, len(labels))
	for i, label := range labels {
		if label == "" {
			return "", nil, errors.New("numbering label must not be empty")
		}
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(label)
		if i == len(labels)-1 {
			break
		}
		v := n.counts[b.String()]
		if v == 0 {
			return "", nil, fmt.Errorf("numbering level %q has not been started", label)
		}
		values = append(values, v)
		fmt.Fprintf(&b, "=%d", v)
	}
	return b.String(), values, nil
}

// Next advances the counter named by the last label and returns the full
// label, such as "3.2" for labels [chapter section].
func (n *Numbering) Next(labels []string) (string, error) {
	if len(labels) == 0 {
		return "", errors.New("numbering needs at least one label")
	}
	if n.counts == nil {
		n.counts = make(map[string]int)
	}
	k, values, err := n.key(labels)
	if err != nil {
		return "", err
	}
	n.counts[k]++
	values = append(values, n.counts[k])

	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "."), nil
}

// Erase resets the counter named by labels and everything numbered under it.
func (n *Numbering) Erase(labels []string) error {
	if len(labels) == 0 {
		return errors.New("numbering needs at least one label")
	}
	k, _, err := n.key(labels)
	if err != nil {
		return err
	}
	delete(n.counts, k)
	for other := range n.counts {
		if strings.HasPrefix(other, k+"=") {
			delete(n.counts, other)
		}
	}
	return nil
}
