// Package collection implements the multiset algebra at the base of every
// stateful operator: a bag of (value, multiplicity) pairs supporting map,
// filter, negate, concat, and consolidate.
//
// A Multiset is canonical when no two entries share a value and no
// multiplicity is zero; Consolidate is the canonicalization function.
// Operators accept non-canonical input but must produce canonical deltas.
package collection
