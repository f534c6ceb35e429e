package scanner

import (
	"strings"

	"github.com/google/uuid"
)

// NamespaceStepIdentity is the fixed UUID namespace for deriving
// deterministic migration step identities from file paths. It is the
// UUID v5 of "pgplan/step-identity/v1" under the standard URL namespace,
// so the same path always yields the same step ID across machines.
var NamespaceStepIdentity = uuid.NewSHA1(uuid.NameSpaceURL, []byte("pgplan/step-identity/v1"))

// StepID derives the deterministic UUID v5 identity for a migration
// step from its forward script path.
//
// The path is normalized before hashing: lowercased and stripped of any
// leading "./", so case-insensitive filesystems and different root
// spellings produce identical IDs.
func StepID(path string) uuid.UUID {
	normalized := strings.TrimPrefix(strings.ToLower(path), "./")
	return uuid.NewSHA1(NamespaceStepIdentity, []byte(normalized))
}
