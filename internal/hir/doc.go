// Package hir defines the flat high-level IR and the generator that lowers
// the syntax tree into it.
//
// A program is a sequence of Instr values in a closed set of variants:
// assignment, arithmetic, conditional, conditional jump, jump and label.
// Generator names begin with '.' (".t" temporaries, ".L" labels) so they can
// never collide with source identifiers. Every variant has a one-line text
// form that Parse reads back.
package hir
