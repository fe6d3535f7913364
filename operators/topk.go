package operators

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/index"
	"github.com/kbukum/difflow/version"
)

// reduceIndexAdapter wraps an index.Index[K,V] with the drain/compact
// bookkeeping the stateful topK variants (statefulReduceOperator) need.
// Reduce in operators/reduce.go does not use it; it runs the same
// absorption loop inline.
type reduceIndexAdapter[K comparable, V comparable] struct {
	ix *index.Index[K, V]
}

func newReduceIndexAdapter[K comparable, V comparable]() *reduceIndexAdapter[K, V] {
	return &reduceIndexAdapter[K, V]{ix: index.New[K, V]()}
}

// absorb feeds every KindData message's entries into the index and
// returns the versions observed plus the raw KindFrontier messages for
// the caller to re-wrap onto its own output type.
func (a *reduceIndexAdapter[K, V]) absorb(msgs []graph.Message[KV[K, V]]) ([]version.Version, []graph.Message[KV[K, V]]) {
	var versions []version.Version
	var frontierMsgs []graph.Message[KV[K, V]]
	for _, msg := range msgs {
		switch msg.Kind {
		case graph.KindData:
			versions = append(versions, msg.Version)
			for _, e := range msg.Collection.Entries() {
				a.ix.AddVersioned(e.Value.Key, e.Value.Value, e.Multiplicity, msg.Version)
			}
		case graph.KindFrontier:
			frontierMsgs = append(frontierMsgs, msg)
		}
	}
	return versions, frontierMsgs
}

func (a *reduceIndexAdapter[K, V]) compactDirty() []K {
	dirty := a.ix.DirtyKeys()
	a.ix.Compact(dirty...)
	return dirty
}

func (a *reduceIndexAdapter[K, V]) get(key K) []collection.Entry[V] {
	stored := a.ix.Get(key)
	out := make([]collection.Entry[V], len(stored))
	for i, e := range stored {
		out[i] = collection.Entry[V]{Value: e.Value, Multiplicity: e.Multiplicity}
	}
	return out
}

// Comparator orders two values of the same type; a return of 0 means the
// two are tied under this comparator and the implementation breaks ties
// by first-seen order in the key's accumulated bag.
type Comparator[V any] func(a, b V) int

// TopK is a specialized Reduce whose f nets each value's multiplicity,
// keeps only values with positive net multiplicity, sorts them by cmp
// (ties broken by the value's first-seen position in the accumulated
// bag), and slices the result to [offset, offset+limit). A value with net
// multiplicity m contributes m consecutive slots to the window, so it may
// appear in the output bag with multiplicity less than m if the window
// boundary falls inside its run.
func TopK[K comparable, V comparable](g *graph.Graph, input *graph.Edge[KV[K, V]], cmp Comparator[V], limit, offset int) (*graph.Edge[KV[K, V]], error) {
	return Reduce(g, input, func(bag []collection.Entry[V]) []collection.Entry[V] {
		return windowedBag(bag, cmp, limit, offset)
	})
}

// windowedBag nets bag by value, drops non-positive values, sorts the
// survivors by cmp with a stable first-seen tie-break, and returns the
// multiplicity-respecting slice of copies in [offset, offset+limit).
func windowedBag[V comparable](bag []collection.Entry[V], cmp Comparator[V], limit, offset int) []collection.Entry[V] {
	items := rankedItems(bag, cmp)

	total := 0
	for _, it := range items {
		total += it.mult
	}
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	var out []collection.Entry[V]
	pos := 0
	for _, it := range items {
		itemStart, itemEnd := pos, pos+it.mult
		pos = itemEnd
		lo, hi := max(itemStart, start), min(itemEnd, end)
		if hi > lo {
			out = append(out, collection.Entry[V]{Value: it.value, Multiplicity: hi - lo})
		}
	}
	return out
}

type rankedItem[V any] struct {
	value V
	mult  int
	seq   int
}

// rankedItems nets bag's multiplicities by value, keeps only positive
// survivors, and returns them sorted by cmp with ties broken by
// first-seen order.
func rankedItems[V comparable](bag []collection.Entry[V], cmp Comparator[V]) []rankedItem[V] {
	totals := make(map[V]int)
	var order []V
	for _, e := range bag {
		if _, seen := totals[e.Value]; !seen {
			order = append(order, e.Value)
		}
		totals[e.Value] += e.Multiplicity
	}
	items := make([]rankedItem[V], 0, len(order))
	for i, v := range order {
		if m := totals[v]; m > 0 {
			items = append(items, rankedItem[V]{value: v, mult: m, seq: i})
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if c := cmp(items[i].value, items[j].value); c != 0 {
			return c < 0
		}
		return items[i].seq < items[j].seq
	})
	return items
}

// orderedDistinct collapses rankedItems to one slot per distinct value
// (ignoring multiplicity beyond presence) and windows to
// [offset, offset+limit) — the shape TopKWithIndex and the two
// positional-reference variants below assign one position to each
// present value, rather than one position per unit of multiplicity.
func orderedDistinct[V comparable](bag []collection.Entry[V], cmp Comparator[V], limit, offset int) []V {
	items := rankedItems(bag, cmp)
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	out := make([]V, 0, end-start)
	for _, it := range items[start:end] {
		out = append(out, it.value)
	}
	return out
}

// Indexed attaches a 0-based position to a topK element.
type Indexed[V any] struct {
	Value V
	Index int
}

// TopKWithIndex is TopK with each surviving distinct value tagged by its
// 0-based position in the windowed order.
func TopKWithIndex[K comparable, V comparable](g *graph.Graph, input *graph.Edge[KV[K, V]], cmp Comparator[V], limit, offset int) (*graph.Edge[KV[K, Indexed[V]]], error) {
	return Reduce(g, input, func(bag []collection.Entry[V]) []collection.Entry[Indexed[V]] {
		values := orderedDistinct(bag, cmp, limit, offset)
		out := make([]collection.Entry[Indexed[V]], len(values))
		for i, v := range values {
			out[i] = collection.Entry[Indexed[V]]{Value: Indexed[V]{Value: v, Index: i}, Multiplicity: 1}
		}
		return out
	})
}

// Fractional attaches a string index such that lexicographic order of
// emitted indices agrees with sort order.
type Fractional[V any] struct {
	Value V
	Index string
}

// TopKWithFractionalIndex maintains, per key, a sorted slice of
// (fractional index, value) reused across rounds so that an
// insert/move/delete touching one element emits only the deltas for that
// element: unaffected neighbors keep their existing index strings.
func TopKWithFractionalIndex[K comparable, V comparable](g *graph.Graph, input *graph.Edge[KV[K, V]], cmp Comparator[V], limit, offset int) (*graph.Edge[KV[K, Fractional[V]]], error) {
	output := graph.NewEdge[KV[K, Fractional[V]]]()
	op := newReduceOperator(input, output, func(prev []fracSlot[V], bag []collection.Entry[V]) ([]fracSlot[V], []collection.Entry[Fractional[V]]) {
		newValues := orderedDistinct(bag, cmp, limit, offset)
		return reconcileFractional(prev, newValues)
	})
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type fracSlot[V any] struct {
	value V
	index string
}

// reconcileFractional walks prev and newValues in lock-step, reusing an
// unchanged slot's index verbatim, reusing a removed slot's index for a
// value that newly occupies that position, and only minting a fresh
// index strictly between its neighbors when neither reuse applies. It
// returns the new slot slice alongside the retract/insert deltas needed
// to bring a consumer's view from prev to it.
func reconcileFractional[V comparable](prev []fracSlot[V], newValues []V) ([]fracSlot[V], []collection.Entry[Fractional[V]]) {
	prevByValue := make(map[V]string, len(prev))
	for _, s := range prev {
		prevByValue[s.value] = s.index
	}
	newSet := make(map[V]struct{}, len(newValues))
	for _, v := range newValues {
		newSet[v] = struct{}{}
	}

	freedIndexes := make([]string, 0)
	for _, s := range prev {
		if _, stillPresent := newSet[s.value]; !stillPresent {
			freedIndexes = append(freedIndexes, s.index)
		}
	}
	freedPos := 0

	next := make([]fracSlot[V], len(newValues))
	var deltas []collection.Entry[Fractional[V]]
	prevIdx := 0
	for i, v := range newValues {
		for prevIdx < len(prev) {
			if _, stillPresent := newSet[prev[prevIdx].value]; stillPresent {
				break
			}
			prevIdx++
		}

		if prevIdx < len(prev) && prev[prevIdx].value == v {
			next[i] = fracSlot[V]{value: v, index: prev[prevIdx].index}
			prevIdx++
			continue
		}
		var idx string
		if existing, ok := prevByValue[v]; ok {
			idx = existing
		} else {
			lo := ""
			if i > 0 {
				lo = next[i-1].index
			}
			hi := ""
			for j := i + 1; j < len(newValues); j++ {
				if existing, ok := prevByValue[newValues[j]]; ok {
					hi = existing
					break
				}
			}
			for freedPos < len(freedIndexes) && freedIndexes[freedPos] <= lo {
				freedPos++
			}
			if freedPos < len(freedIndexes) && (hi == "" || freedIndexes[freedPos] < hi) {
				idx = freedIndexes[freedPos]
				freedPos++
			} else {
				idx = midpointIndex(lo, hi)
			}
		}
		next[i] = fracSlot[V]{value: v, index: idx}
		if old, ok := prevByValue[v]; ok && old == idx {
			continue
		}
		deltas = append(deltas, collection.Entry[Fractional[V]]{
			Value:        Fractional[V]{Value: v, Index: idx},
			Multiplicity: 1,
		})
	}

	nextSet := make(map[V]struct{}, len(next))
	for _, s := range next {
		nextSet[s.value] = struct{}{}
	}
	for _, s := range prev {
		if _, stillThere := nextSet[s.value]; !stillThere {
			deltas = append(deltas, collection.Entry[Fractional[V]]{
				Value:        Fractional[V]{Value: s.value, Index: s.index},
				Multiplicity: -1,
			})
		}
	}
	return next, deltas
}

// indexAlphabet is the ordered symbol set fractional indices are built
// from; byte-wise string comparison over indices built only from these
// symbols agrees with position order.
const indexAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func symbolIndex(b byte) int {
	for i := 0; i < len(indexAlphabet); i++ {
		if indexAlphabet[i] == b {
			return i
		}
	}
	return 0
}

// midpointIndex returns a string strictly between lo and hi under
// byte-wise lexicographic order; "" for lo means unbounded below, "" for
// hi means unbounded above.
func midpointIndex(lo, hi string) string {
	var buf []byte
	for i := 0; i < 64; i++ {
		loSym := 0
		if i < len(lo) {
			loSym = symbolIndex(lo[i])
		}
		hiSym := len(indexAlphabet)
		if i < len(hi) {
			hiSym = symbolIndex(hi[i])
		}
		if hiSym-loSym > 1 {
			buf = append(buf, indexAlphabet[loSym+(hiSym-loSym)/2])
			return string(buf)
		}
		buf = append(buf, indexAlphabet[loSym])
	}
	return string(buf)
}

// Ref points at an element's predecessor in a topKWithPreviousRef
// ordering; Present is false for the first element, whose predecessor is
// the null sentinel.
type Ref[V any] struct {
	Value       V
	Predecessor V
	Present     bool
}

// TopKWithPreviousRef maintains, per key, the same windowed order as
// TopK but emits each element paired with a reference to its immediate
// predecessor instead of a position or fractional index, so a consumer
// can maintain an intrusive linked list. Only elements whose predecessor
// actually changed produce a retract/insert pair.
func TopKWithPreviousRef[K comparable, V comparable](g *graph.Graph, input *graph.Edge[KV[K, V]], cmp Comparator[V], limit, offset int) (*graph.Edge[KV[K, Ref[V]]], error) {
	output := graph.NewEdge[KV[K, Ref[V]]]()
	op := newReduceOperator(input, output, func(prev []V, bag []collection.Entry[V]) ([]V, []collection.Entry[Ref[V]]) {
		newValues := orderedDistinct(bag, cmp, limit, offset)
		prevRef := make(map[V]Ref[V], len(prev))
		for i, v := range prev {
			if i == 0 {
				prevRef[v] = Ref[V]{Value: v, Present: false}
			} else {
				prevRef[v] = Ref[V]{Value: v, Predecessor: prev[i-1], Present: true}
			}
		}
		newRef := make([]Ref[V], len(newValues))
		for i, v := range newValues {
			if i == 0 {
				newRef[i] = Ref[V]{Value: v, Present: false}
			} else {
				newRef[i] = Ref[V]{Value: v, Predecessor: newValues[i-1], Present: true}
			}
		}

		var deltas []collection.Entry[Ref[V]]
		newSet := make(map[V]struct{}, len(newValues))
		for i, v := range newValues {
			newSet[v] = struct{}{}
			old, existed := prevRef[v]
			if existed && old.Present == newRef[i].Present && old.Predecessor == newRef[i].Predecessor {
				continue
			}
			deltas = append(deltas, collection.Entry[Ref[V]]{Value: newRef[i], Multiplicity: 1})
		}
		for _, v := range prev {
			if _, stillThere := newSet[v]; !stillThere {
				deltas = append(deltas, collection.Entry[Ref[V]]{Value: prevRef[v], Multiplicity: -1})
			}
		}
		return newValues, deltas
	})
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

// statefulReduceOperator generalizes reduceOperator for topK variants
// whose emission depends on an arbitrary per-key state carried across
// rounds (a slot slice, a previous ordering) rather than purely on the
// previously emitted output bag.
type statefulReduceOperator[K comparable, V comparable, S any, W any] struct {
	id     graph.OperatorID
	input  *graph.Edge[KV[K, V]]
	output *graph.Edge[KV[K, W]]
	fn     func(prevState S, bag []collection.Entry[V]) (S, []collection.Entry[W])
	in     *reduceIndexAdapter[K, V]
	state  map[K]S
}

func newReduceOperator[K comparable, V comparable, S any, W any](input *graph.Edge[KV[K, V]], output *graph.Edge[KV[K, W]], fn func(prevState S, bag []collection.Entry[V]) (S, []collection.Entry[W])) *statefulReduceOperator[K, V, S, W] {
	return &statefulReduceOperator[K, V, S, W]{
		id:     uuid.New(),
		input:  input,
		output: output,
		fn:     fn,
		in:     newReduceIndexAdapter[K, V](),
		state:  make(map[K]S),
	}
}

func (s *statefulReduceOperator[K, V, S, W]) ID() graph.OperatorID  { return s.id }
func (s *statefulReduceOperator[K, V, S, W]) Name() string          { return "operators.topk" }
func (s *statefulReduceOperator[K, V, S, W]) Inputs() []graph.Queue { return []graph.Queue{s.input} }

func (s *statefulReduceOperator[K, V, S, W]) Step(_ context.Context) (produced bool, err error) {
	msgs := s.input.Drain()
	if len(msgs) == 0 {
		return false, nil
	}
	defer guard(s.Name(), &err)

	versions, frontierMsgs := s.in.absorb(msgs)
	dirty := s.in.compactDirty()

	var deltaEntries []collection.Entry[KV[K, W]]
	for _, k := range dirty {
		bag := s.in.get(k)
		newState, delta := s.fn(s.state[k], bag)
		s.state[k] = newState
		for _, d := range delta {
			deltaEntries = append(deltaEntries, collection.Entry[KV[K, W]]{
				Value:        KV[K, W]{Key: k, Value: d.Value},
				Multiplicity: d.Multiplicity,
			})
		}
	}

	if len(deltaEntries) > 0 {
		s.output.Send(graph.DataAt(joinVersions(versions), collection.Of(deltaEntries...)))
	}
	for _, fm := range frontierMsgs {
		s.output.Send(graph.FrontierAdvance[KV[K, W]](fm.Frontier))
	}
	return true, nil
}
