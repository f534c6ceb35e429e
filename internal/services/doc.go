// Package services orchestrates the deployment workflow: planning
// (scan, extract, graph, schedule) and deployment (migration sweep
// through the ledger, then dependency-ordered object creation).
package services
