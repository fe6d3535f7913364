package operators

import (
	"context"

	"github.com/google/uuid"
	"github.com/kbukum/difflow/collection"
	"github.com/kbukum/difflow/graph"
	"github.com/kbukum/difflow/index"
	"github.com/kbukum/difflow/version"
)

// Joined is the shape a join operator emits: the shared key and one
// matched (left, right) pair.
type Joined[K, V1, V2 any] struct {
	Key   K
	Left  V1
	Right V2
}

// Join produces deltas of (K, (V1, V2)) such that the accumulated output
// is always the natural join of the accumulated inputs. Each step drains
// both inputs into temporary delta indexes δA and δB, then emits
// δA ⋈ B_accum, folds δA into A_accum, emits A_accum ⋈ δB, folds δB into
// B_accum — counting each contribution to the accumulated result exactly
// once.
func Join[K comparable, V1 comparable, V2 comparable](g *graph.Graph, left *graph.Edge[KV[K, V1]], right *graph.Edge[KV[K, V2]]) (*graph.Edge[Joined[K, V1, V2]], error) {
	output := graph.NewEdge[Joined[K, V1, V2]]()
	op := &joinOperator[K, V1, V2]{
		id:     uuid.New(),
		left:   left,
		right:  right,
		output: output,
		aAccum: index.New[K, V1](),
		bAccum: index.New[K, V2](),
	}
	if err := g.Add(op); err != nil {
		return nil, err
	}
	return output, nil
}

type joinOperator[K comparable, V1 comparable, V2 comparable] struct {
	id     graph.OperatorID
	left   *graph.Edge[KV[K, V1]]
	right  *graph.Edge[KV[K, V2]]
	output *graph.Edge[Joined[K, V1, V2]]
	aAccum *index.Index[K, V1]
	bAccum *index.Index[K, V2]
}

func (j *joinOperator[K, V1, V2]) ID() graph.OperatorID { return j.id }
func (j *joinOperator[K, V1, V2]) Name() string         { return "operators.join" }
func (j *joinOperator[K, V1, V2]) Inputs() []graph.Queue {
	return []graph.Queue{j.left, j.right}
}

func (j *joinOperator[K, V1, V2]) Step(_ context.Context) (bool, error) {
	leftMsgs := j.left.Drain()
	rightMsgs := j.right.Drain()
	if len(leftMsgs) == 0 && len(rightMsgs) == 0 {
		return false, nil
	}

	deltaA := index.New[K, V1]()
	deltaB := index.New[K, V2]()
	var frontierMsgs []graph.Message[Joined[K, V1, V2]]

	for _, msg := range leftMsgs {
		switch msg.Kind {
		case graph.KindData:
			for _, e := range msg.Collection.Entries() {
				deltaA.AddVersioned(e.Value.Key, e.Value.Value, e.Multiplicity, msg.Version)
			}
		case graph.KindFrontier:
			frontierMsgs = append(frontierMsgs, graph.FrontierAdvance[Joined[K, V1, V2]](msg.Frontier))
		}
	}
	for _, msg := range rightMsgs {
		switch msg.Kind {
		case graph.KindData:
			for _, e := range msg.Collection.Entries() {
				deltaB.AddVersioned(e.Value.Key, e.Value.Value, e.Multiplicity, msg.Version)
			}
		case graph.KindFrontier:
			frontierMsgs = append(frontierMsgs, graph.FrontierAdvance[Joined[K, V1, V2]](msg.Frontier))
		}
	}

	byVersion := make(map[string][]collection.Entry[Joined[K, V1, V2]])
	var versionOrder []version.Version
	appendResults := func(joined []index.Joined[K, V1, V2]) {
		for _, r := range joined {
			key := r.Version.String()
			if _, seen := byVersion[key]; !seen {
				versionOrder = append(versionOrder, r.Version)
			}
			byVersion[key] = append(byVersion[key], collection.Entry[Joined[K, V1, V2]]{
				Value:        Joined[K, V1, V2]{Key: r.Key, Left: r.Left, Right: r.Right},
				Multiplicity: r.Multiplicity,
			})
		}
	}

	// δA ⋈ B_accum
	appendResults(index.Join(deltaA, j.bAccum))
	// fold δA into A_accum
	j.aAccum.Append(deltaA)
	j.aAccum.Compact(deltaA.Keys()...)
	// A_accum ⋈ δB
	appendResults(index.Join(j.aAccum, deltaB))
	// fold δB into B_accum
	j.bAccum.Append(deltaB)
	j.bAccum.Compact(deltaB.Keys()...)

	for _, v := range versionOrder {
		entries := byVersion[v.String()]
		if len(entries) > 0 {
			j.output.Send(graph.DataAt(v, collection.Of(entries...)))
		}
	}
	for _, fm := range frontierMsgs {
		j.output.Send(fm)
	}
	return true, nil
}

// Anti produces (K, (V1, nil)) for left rows with no match in right,
// realized as inner join subtracted from left via negate+concat: the
// accumulated left minus the accumulated matched rows.
type AntiJoined[K, V1 any] struct {
	Key  K
	Left V1
}

// Anti emits left-side rows that currently have no matching key on the
// right, derived from Join by negating the matched projection of left
// and concatenating it with left itself (matched rows cancel, leaving
// only the unmatched ones).
func Anti[K comparable, V1 comparable, V2 comparable](g *graph.Graph, left *graph.Edge[KV[K, V1]], right *graph.Edge[KV[K, V2]]) (*graph.Edge[AntiJoined[K, V1]], error) {
	// Split left into two independently-drained views: one feeds Join
	// directly, the other is projected to (K, V1) for the anti-negate.
	leftForJoin, leftForProject, err := Tee(g, left)
	if err != nil {
		return nil, err
	}
	joined, err := Join(g, leftForJoin, right)
	if err != nil {
		return nil, err
	}
	matchedLeft, err := Map(g, joined, func(j Joined[K, V1, V2]) KV[K, V1] {
		return KV[K, V1]{Key: j.Key, Value: j.Left}
	})
	if err != nil {
		return nil, err
	}
	negatedMatched, err := Negate(g, matchedLeft)
	if err != nil {
		return nil, err
	}
	union, err := Concat(g, leftForProject, negatedMatched)
	if err != nil {
		return nil, err
	}
	consolidated, err := Consolidate(g, union)
	if err != nil {
		return nil, err
	}
	return Map(g, consolidated, func(kv KV[K, V1]) AntiJoined[K, V1] {
		return AntiJoined[K, V1]{Key: kv.Key, Left: kv.Value}
	})
}

// Left emits the union of Join and Anti(left, right): every left row,
// matched rows paired with their right-hand value and unmatched rows
// paired with an absent marker.
type LeftJoined[K, V1, V2 any] struct {
	Key     K
	Left    V1
	Right   V2
	Matched bool
}

// LeftOuter realizes left := inner ∪ anti(left) by tagging each branch's
// output with whether it matched, and concatenating the two streams.
func LeftOuter[K comparable, V1 comparable, V2 comparable](g *graph.Graph, left *graph.Edge[KV[K, V1]], right *graph.Edge[KV[K, V2]]) (*graph.Edge[LeftJoined[K, V1, V2]], error) {
	leftForJoin, leftForAnti, err := Tee(g, left)
	if err != nil {
		return nil, err
	}
	rightForJoin, rightForAnti, err := Tee(g, right)
	if err != nil {
		return nil, err
	}
	joined, err := Join(g, leftForJoin, rightForJoin)
	if err != nil {
		return nil, err
	}
	matched, err := Map(g, joined, func(j Joined[K, V1, V2]) LeftJoined[K, V1, V2] {
		return LeftJoined[K, V1, V2]{Key: j.Key, Left: j.Left, Right: j.Right, Matched: true}
	})
	if err != nil {
		return nil, err
	}
	anti, err := Anti(g, leftForAnti, rightForAnti)
	if err != nil {
		return nil, err
	}
	unmatched, err := Map(g, anti, func(a AntiJoined[K, V1]) LeftJoined[K, V1, V2] {
		return LeftJoined[K, V1, V2]{Key: a.Key, Left: a.Left, Matched: false}
	})
	if err != nil {
		return nil, err
	}
	return Concat(g, matched, unmatched)
}

// RightJoined is the symmetric counterpart of LeftJoined: every right
// row, matched or not.
type RightJoined[K, V1, V2 any] struct {
	Key     K
	Left    V1
	Right   V2
	Matched bool
}

// RightOuter realizes right := inner ∪ anti(right), symmetric to LeftOuter.
func RightOuter[K comparable, V1 comparable, V2 comparable](g *graph.Graph, left *graph.Edge[KV[K, V1]], right *graph.Edge[KV[K, V2]]) (*graph.Edge[RightJoined[K, V1, V2]], error) {
	rightForJoin, rightForAnti, err := Tee(g, right)
	if err != nil {
		return nil, err
	}
	leftForJoin, leftForAnti, err := Tee(g, left)
	if err != nil {
		return nil, err
	}
	joined, err := Join(g, leftForJoin, rightForJoin)
	if err != nil {
		return nil, err
	}
	matched, err := Map(g, joined, func(j Joined[K, V1, V2]) RightJoined[K, V1, V2] {
		return RightJoined[K, V1, V2]{Key: j.Key, Left: j.Left, Right: j.Right, Matched: true}
	})
	if err != nil {
		return nil, err
	}
	anti, err := Anti(g, rightForAnti, leftForAnti)
	if err != nil {
		return nil, err
	}
	unmatched, err := Map(g, anti, func(a AntiJoined[K, V2]) RightJoined[K, V1, V2] {
		return RightJoined[K, V1, V2]{Key: a.Key, Right: a.Left, Matched: false}
	})
	if err != nil {
		return nil, err
	}
	return Concat(g, matched, unmatched)
}

// FullJoined is the union shape emitted by FullOuter.
type FullJoined[K, V1, V2 any] struct {
	Key          K
	Left         V1
	Right        V2
	LeftMatched  bool
	RightMatched bool
}

// FullOuter realizes full := inner ∪ anti(left) ∪ anti(right). Each side
// is fanned out three ways: one view feeds the inner join, one feeds its
// own anti-join, and one feeds the other side's anti-join (Anti drains
// both of its arguments, so it cannot share an edge with Join or with
// the opposite anti-join).
func FullOuter[K comparable, V1 comparable, V2 comparable](g *graph.Graph, left *graph.Edge[KV[K, V1]], right *graph.Edge[KV[K, V2]]) (*graph.Edge[FullJoined[K, V1, V2]], error) {
	leftViews, err := Fanout(g, left, 3)
	if err != nil {
		return nil, err
	}
	rightViews, err := Fanout(g, right, 3)
	if err != nil {
		return nil, err
	}
	leftForJoin, leftForLeftAnti, leftForRightAnti := leftViews[0], leftViews[1], leftViews[2]
	rightForJoin, rightForLeftAnti, rightForRightAnti := rightViews[0], rightViews[1], rightViews[2]

	joined, err := Join(g, leftForJoin, rightForJoin)
	if err != nil {
		return nil, err
	}
	matched, err := Map(g, joined, func(j Joined[K, V1, V2]) FullJoined[K, V1, V2] {
		return FullJoined[K, V1, V2]{Key: j.Key, Left: j.Left, Right: j.Right, LeftMatched: true, RightMatched: true}
	})
	if err != nil {
		return nil, err
	}

	leftAnti, err := Anti(g, leftForLeftAnti, rightForLeftAnti)
	if err != nil {
		return nil, err
	}
	unmatchedLeft, err := Map(g, leftAnti, func(a AntiJoined[K, V1]) FullJoined[K, V1, V2] {
		return FullJoined[K, V1, V2]{Key: a.Key, Left: a.Left, LeftMatched: false, RightMatched: false}
	})
	if err != nil {
		return nil, err
	}

	rightAnti, err := Anti(g, rightForRightAnti, leftForRightAnti)
	if err != nil {
		return nil, err
	}
	unmatchedRight, err := Map(g, rightAnti, func(a AntiJoined[K, V2]) FullJoined[K, V1, V2] {
		return FullJoined[K, V1, V2]{Key: a.Key, Right: a.Left, LeftMatched: false, RightMatched: false}
	})
	if err != nil {
		return nil, err
	}

	withLeftAnti, err := Concat(g, matched, unmatchedLeft)
	if err != nil {
		return nil, err
	}
	return Concat(g, withLeftAnti, unmatchedRight)
}
