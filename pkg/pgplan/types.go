package pgplan

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ObjectName is a case-normalized, schema-qualified identifier such as
// "sales.customer_order_summary". It is the node key of the dependency
// graph and the unit of the deployment plan.
type ObjectName string

// NormalizeObjectName converts a raw identifier to its canonical graph-key
// form (lower case). The original spelling should be preserved separately
// for diagnostics.
func NormalizeObjectName(raw string) ObjectName {
	return ObjectName(strings.ToLower(strings.TrimSpace(raw)))
}

// String returns the normalized identifier text.
func (n ObjectName) String() string { return string(n) }

// ObjectKind classifies a graph node.
type ObjectKind int

const (
	// KindTable marks a base table. Tables are owned by migrations, are
	// always considered already deployed, and never appear in a plan.
	KindTable ObjectKind = iota

	// KindDerivedObject marks a view, materialized view or table function
	// defined in the corpus and subject to dependency ordering.
	KindDerivedObject
)

// String returns a human-readable kind name.
func (k ObjectKind) String() string {
	switch k {
	case KindTable:
		return "table"
	case KindDerivedObject:
		return "derived object"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// SourceFile is one raw SQL definition as read from the corpus.
// Path is used purely for diagnostics.
type SourceFile struct {
	Path    string
	Content string
}

// Corpus is the complete planning input: every table-defining source and
// every derived-object source. The planner rebuilds the dependency graph
// from scratch on every run; no graph state is persisted between runs.
type Corpus struct {
	Tables  []SourceFile
	Objects []SourceFile
}

// DeploymentPlan is an ordered sequence of derived-object names such that
// every object appears after everything it depends on. Ties between
// unrelated objects are broken by ascending lexical order, so identical
// input always yields an identical plan.
type DeploymentPlan []ObjectName

// MigrationStep is one forward/reverse script pair owned by the migration
// ledger. Steps are immutable once recorded as applied and are always
// processed in ascending Sequence order.
type MigrationStep struct {
	// Sequence is the monotonically increasing step number taken from the
	// numeric filename prefix (e.g. 0003_add_totals.sql -> 3).
	Sequence int

	// ID is a deterministic UUIDv5 derived from the normalized file path,
	// stable across checkouts and repeated scans of the same tree.
	ID uuid.UUID

	// Name is the human-readable step name (filename without prefix/suffix).
	Name string

	// Forward is the script that transitions the database to the new state.
	Forward string

	// Reverse is the script that undoes Forward. Empty when the step has
	// no reverse; Revert then fails with ErrNoReverseDefined.
	Reverse string

	// Path is the forward script's path relative to the corpus root.
	Path string

	// Checksum is the SHA-256 of the normalized forward script, recorded
	// alongside the applied state to detect drift in already-applied steps.
	Checksum string
}

// HasReverse reports whether the step carries a reverse script.
func (s MigrationStep) HasReverse() bool { return strings.TrimSpace(s.Reverse) != "" }

// PlanConfig contains the parameters for a pure planning run.
type PlanConfig struct {
	// SourcePath is the corpus root containing tables/, views/ and migrations/.
	SourcePath string

	// Verbose enables detailed logging.
	Verbose bool
}

// Validate checks if the PlanConfig has all required fields.
func (c *PlanConfig) Validate() error {
	if c.SourcePath == "" {
		return fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig)
	}
	return nil
}

// DeployConfig contains all parameters needed for a deployment operation.
type DeployConfig struct {
	// SourcePath is the corpus root containing tables/, views/ and migrations/.
	SourcePath string

	// DatabaseName is the target database name.
	DatabaseName string

	// ConnectionString is the PostgreSQL connection string (URI or key=value
	// format). After CLI resolution it points at the target database.
	ConnectionString string

	// SkipMigrations deploys derived objects only, leaving the ledger alone.
	SkipMigrations bool

	// DryRun computes and prints the plan without touching the database.
	DryRun bool

	// Force bypasses interactive approval for revert operations.
	Force bool

	// Timeout is the global timeout for the entire deployment.
	Timeout time.Duration

	// Verbose enables detailed logging.
	Verbose bool

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Azure Entra ID authentication parameters (AuthMethodAzureEntraID only).
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is the region for AWS IAM token generation (AuthMethodAWSIAM only).
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name
	// (AuthMethodGoogleIAM only), e.g. "project:region:instance".
	GoogleInstance string
}

// Validate checks if the DeployConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *DeployConfig) Validate() error {
	var errs []error

	if c.SourcePath == "" {
		errs = append(errs, fmt.Errorf("SourcePath is required: %w", ErrInvalidConfig))
	}
	if !c.DryRun && c.DatabaseName == "" {
		errs = append(errs, fmt.Errorf("DatabaseName is required: %w", ErrInvalidConfig))
	}
	if !c.DryRun && c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	// Additional connection parameters appended verbatim to the DSN.
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters. If all three are provided,
	// Service Principal authentication is used; otherwise the
	// DefaultAzureCredential chain applies.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is used for AWS IAM token generation.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name.
	GoogleInstance string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}
