// Package walker is the Type-Tree Walker (C5): given a root symbol and a
// visitor, it recursively resolves the symbol's type graph to atomic
// leaves, merging property lists along the way, and invokes the visitor
// once per leaf (and, depending on mode, once per composite node too).
//
// The walk is a plain recursive descent rather than an explicit stack --
// the type graphs involved are shallow (depth is capped at 100, well
// short of Go's default goroutine stack growth limit) and recursion
// keeps the property-merge bookkeeping in one place instead of spread
// across a manually maintained frame stack.
package walker
