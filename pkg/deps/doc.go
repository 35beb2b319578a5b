// Package deps reconciles what workspace packages import with what they
// declare.
//
// A check runs in three steps. The internal resolver extracts imports from
// a package's source roots and follows references into the namespace
// (ns.<name>) until no unexplored name is left, yielding the transitive
// closure of internal dependencies. The remaining top-level imports, minus
// the standard library and the namespace itself, are external candidates.
// Both sets are then diffed against the package manifest: internal names by
// exact match, external names against every import name a declared
// distribution is known to provide, with a fuzzy fallback for the common
// case where the import and distribution names only differ in spelling
// (aws_lambda_powertools vs aws-lambda-powertools).
//
// The resulting [Report] is pure data. [Syncer] turns a report into manifest
// edits.
package deps
