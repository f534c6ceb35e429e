// Package db establishes PostgreSQL connection pools for deployments.
// It parses connection strings, selects an authentication backend
// (standard credentials or cloud IAM tokens for AWS, Azure and Google
// Cloud SQL) and adapts pgxpool to the pgplan.DBConnection interface.
package db
