// Package cqp compiles validated IR plans into flat CQP text.
//
// The pipeline per query: enumerate every arrangement of the token set that
// the order and anchor constraints allow, lower dependencies and predicates
// onto the earliest token position that closes their references, join the
// tokens of each arrangement into a sequence with distance operators, and
// emit the disjunction over all arrangements. A plan with several queries
// or query parts compiles into a Program of named sequential steps combined
// by set operations; parts are never fused into a single linear query.
//
// Everything here is pure and deterministic: output order follows token
// declaration order and arrangement order, never map iteration order.
package cqp
