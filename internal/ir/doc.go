// Package ir defines the intermediate representation for tree-shaped
// dependency queries.
//
// A front end parses its source language (grew, dep_search, CoNLL-U,
// deptreepy) into this IR: a set of abstract tokens, directed dependency
// edges between them, linear-order constraints, and boolean predicates over
// token attributes. The IR is an unordered graph over opaque token
// identifiers; nothing here knows about CQP or linearization. The cqp
// package consumes validated IR values and compiles them into flat token
// sequences.
//
// All IR values are immutable after construction. Query and Plan validate
// their invariants on construction and fail with InvalidError instead of
// silently dropping malformed input.
package ir
