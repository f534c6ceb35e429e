// Package graph builds the dependency graph over a deployment corpus and
// computes the dependency-respecting deployment order of its derived
// objects.
//
// Nodes are interned ObjectName handles in an arena; adjacency is kept as
// index slices, so the structure carries no object back-pointers and is
// rebuilt fresh on every planning run. Edges run from the depended-upon
// object to the object that depends on it: edge direction means "must
// deploy before".
//
// Base tables participate only as dependency targets. They are considered
// already satisfied, contribute no ordering requirement of their own, and
// never appear in a plan.
//
// Scheduling is Kahn's algorithm with the ready set kept in ascending
// lexical order, so the same graph always yields the same plan. A cycle
// among derived objects is a terminal CycleError carrying a
// representative cycle path; no partial plan is ever produced.
package graph
