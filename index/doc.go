// Package index implements the keyed multimap underlying every stateful
// operator: a mapping from K to a bag of (V, multiplicity) entries,
// supporting point lookup, append (union), compaction, and a relational
// join.
//
// In its versioned form, Index additionally records the version at which
// each entry was added, supports reconstructing the bag visible at a given
// version, and compacts entries whose versions are no longer coverable by
// a supplied frontier.
package index
