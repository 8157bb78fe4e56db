package handletable

// Type tags the kind of object stored in an occupied slot. The table
// compares tags for equality at lookup time and never interprets them
// further. Callers define their own kinds starting at 1.
type Type uint8

// TypeAny is the reserved wildcard tag. Lookups that pass TypeAny match
// any occupied slot regardless of its stored type; allocating with
// TypeAny is rejected.
const TypeAny Type = 0
