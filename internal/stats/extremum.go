package stats

import "cmp"

// tally folds one value per key and remembers the order keys were first seen.
type tally[V cmp.Ordered] struct {
	order  []string
	values map[string]V
}

func newTally[V cmp.Ordered]() *tally[V] {
	return &tally[V]{values: make(map[string]V)}
}

// observe stores v for a new key, or merges it into the key's running value.
func (t *tally[V]) observe(key string, v V, merge func(cur, next V) V) {
	cur, ok := t.values[key]
	if !ok {
		t.order = append(t.order, key)
		t.values[key] = v
		return
	}
	t.values[key] = merge(cur, v)
}

func (t *tally[V]) len() int {
	return len(t.order)
}

// extreme returns the value chosen by pick across all keys and every key holding exactly
// that value. The tally must not be empty.
func (t *tally[V]) extreme(pick func(a, b V) V) (V, []string) {
	best := t.values[t.order[0]]
	for _, key := range t.order[1:] {
		best = pick(best, t.values[key])
	}
	keys := make([]string, 0, 1)
	for _, key := range t.order {
		if t.values[key] == best {
			keys = append(keys, key)
		}
	}
	return best, keys
}

func maxOf[V cmp.Ordered](a, b V) V { return max(a, b) }

func minOf[V cmp.Ordered](a, b V) V { return min(a, b) }

func keepFirst[V cmp.Ordered](cur, _ V) V { return cur }

func sum[V int | int64 | float64](cur, next V) V { return cur + next }

// ranking turns a tally into a Result: the extreme under pick, optionally gated by qualify,
// with ties beyond tieCap (0 disables the cap) collapsed into TooManyTies.
type ranking[V cmp.Ordered] struct {
	pick    func(a, b V) V
	qualify func(best V) bool
	tieCap  int
	none    string
}

func (r ranking[V]) resolve(t *tally[V]) Result {
	if t.len() == 0 {
		return noQualifying(r.none)
	}
	best, keys := t.extreme(r.pick)
	if r.qualify != nil && !r.qualify(best) {
		return noQualifying(r.none)
	}
	if r.tieCap > 0 && len(keys) > r.tieCap {
		return tooManyTies()
	}
	return found(keys)
}
