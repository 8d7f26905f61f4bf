// Package costing prices a 3D-print job from material, machine time,
// energy, and labor inputs plus a margin. All arithmetic happens in
// integer minor currency units; floating point only appears inside a
// single component computation before rounding.
package costing
