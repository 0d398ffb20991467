// Package fpc calculates fixed-point encodings.
//
// Given a range [min, max] and a precision, Calculate finds the narrowest
// binary fixed-point code that covers the range with a step no larger than the
// precision: the number of fractional bits, the machine width (8, 16, 32, or
// 64 bits), whether codes are signed, and the offset added to codes when the
// range does not sit near zero.
//
// The three inputs may be given as arithmetic expressions. "1/3", "2^-10", and
// "-(4 + l)" are all expressions; the single letters l, h, and p refer to min,
// max, and precision, so "h - 255" is a valid min whenever max resolves. Resolve
// evaluates the three expressions in whatever order their dependencies allow.
//
// Expressions are evaluated in an Env, which holds variables. Each resolution
// uses its own Env, so independent calculations never share state.
package fpc
