// Package preprocessor prepares raw SQL definition text for the two
// consumers that must not see the same bytes: the identifier extractor,
// which needs comment-free text so commented-out markers never create
// dependency edges, and the deployer, which needs executable SQL with the
// @@name@@ dependency markers erased.
//
// The comment stripper is a state machine, not a parser: it tracks just
// enough SQL lexical structure (line comments, nestable block comments,
// single-quoted strings with '' escapes, dollar-quoted strings with
// optional tags) to know when a "--" or "/*" is real and when it is part
// of a literal.
package preprocessor
