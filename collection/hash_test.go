package collection

import "testing"

type compositeKey struct {
	Tenant string
	IDs    []int
}

func TestHashKeyStableForEqualValues(t *testing.T) {
	a := compositeKey{Tenant: "t1", IDs: []int{1, 2, 3}}
	b := compositeKey{Tenant: "t1", IDs: []int{1, 2, 3}}
	ka, err := HashKey(a)
	if err != nil {
		t.Fatalf("HashKey(a): %v", err)
	}
	kb, err := HashKey(b)
	if err != nil {
		t.Fatalf("HashKey(b): %v", err)
	}
	if ka != kb {
		t.Fatalf("structurally equal values hashed differently: %s vs %s", ka, kb)
	}
}

func TestHashKeyDiffersForDifferentValues(t *testing.T) {
	a := compositeKey{Tenant: "t1", IDs: []int{1, 2, 3}}
	b := compositeKey{Tenant: "t1", IDs: []int{1, 2, 4}}
	ka := MustHashKey(a)
	kb := MustHashKey(b)
	if ka == kb {
		t.Fatalf("structurally different values hashed identically: %s", ka)
	}
}

func TestHashKeyUsableAsMapKey(t *testing.T) {
	m := map[Key]string{}
	k := MustHashKey(compositeKey{Tenant: "t1", IDs: []int{7}})
	m[k] = "present"
	if m[MustHashKey(compositeKey{Tenant: "t1", IDs: []int{7}})] != "present" {
		t.Fatalf("expected equal composite values to collide on the same map key")
	}
}
