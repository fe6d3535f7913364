package version

import "testing"

func TestLessEqual(t *testing.T) {
	a := New(1, 2)
	b := New(1, 3)
	if !a.LessEqual(b) {
		t.Fatalf("expected %v <= %v", a, b)
	}
	if b.LessEqual(a) {
		t.Fatalf("did not expect %v <= %v", b, a)
	}
	c := New(2, 1)
	if a.LessEqual(c) || c.LessEqual(a) {
		t.Fatalf("%v and %v are incomparable, LessEqual should be false both ways", a, c)
	}
}

func TestMeetJoin(t *testing.T) {
	a := New(1, 4)
	b := New(3, 2)
	if got := Meet(a, b); !got.Equal(New(1, 2)) {
		t.Fatalf("Meet(%v,%v) = %v, want [1,2]", a, b, got)
	}
	if got := Join(a, b); !got.Equal(New(3, 4)) {
		t.Fatalf("Join(%v,%v) = %v, want [3,4]", a, b, got)
	}
}

func TestExtendTruncate(t *testing.T) {
	v := New(2)
	ext := v.Extend()
	if ext.Dim() != 2 || ext.At(1) != 0 {
		t.Fatalf("Extend() = %v, want [2,0]", ext)
	}
	back := ext.Truncate()
	if !back.Equal(v) {
		t.Fatalf("Truncate(Extend(%v)) = %v, want %v", v, back, v)
	}
}

func TestAdvanceInner(t *testing.T) {
	v := New(2, 0)
	adv := v.AdvanceInner()
	if !adv.Equal(New(2, 1)) {
		t.Fatalf("AdvanceInner(%v) = %v, want [2,1]", v, adv)
	}
}

func TestFrontierCoversAndAntichain(t *testing.T) {
	// [1,0] dominates [1,5] and [2,0]; the minimal antichain keeps only [1,0].
	f := NewFrontier(New(1, 0), New(1, 5), New(2, 0))
	if len(f.Elements()) != 1 {
		t.Fatalf("expected antichain of 1 element, got %v", f.Elements())
	}
	if !f.Covers(New(1, 5)) {
		t.Fatalf("expected frontier %v to cover [1,5]", f)
	}
	if !f.Covers(New(5, 5)) {
		t.Fatalf("expected frontier %v to cover [5,5]", f)
	}
	if f.Covers(New(0, 5)) {
		t.Fatalf("did not expect frontier %v to cover [0,5]", f)
	}
}

func TestFrontierMonotonicity(t *testing.T) {
	f1 := NewFrontier(New(1))
	f2 := NewFrontier(New(2))
	if !f1.LessEqual(f2) {
		t.Fatalf("expected %v <= %v", f1, f2)
	}
	if f2.LessEqual(f1) {
		t.Fatalf("did not expect %v <= %v", f2, f1)
	}
}

func TestFrontierExtendTruncate(t *testing.T) {
	f := NewFrontier(New(3))
	ext := f.Extend()
	if !ext.Equal(NewFrontier(New(3, 0))) {
		t.Fatalf("Extend(%v) = %v, want {[3,0]}", f, ext)
	}
	back := ext.Truncate()
	if !back.Equal(f) {
		t.Fatalf("Truncate(Extend(%v)) = %v, want %v", f, back, f)
	}
}

func TestFrontierMerge(t *testing.T) {
	a := NewFrontier(New(1, 5))
	b := NewFrontier(New(2, 1))
	m := Merge(a, b)
	for _, v := range []Version{New(1, 5), New(2, 1)} {
		if !m.Covers(v) {
			t.Fatalf("merged frontier %v should cover %v", m, v)
		}
	}
}
