package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

const (
	major = 0
	minor = 2
	patch = 0

	// Oldest deployed version the contracts can be updated from. 0.1.0 is
	// the initial release that stored the same keys, so no data migration
	// is performed on update.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	// Version is the current version of the contracts, packed into a
	// single number.
	Version = major*1_000_000 + minor*1_000 + patch

	// PrevVersion is the packed form of the oldest updatable version.
	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch

	// ErrVersionMismatch is thrown by CheckVersion in case of error.
	ErrVersionMismatch = "previous version mismatch"

	// ErrAlreadyUpdated is thrown by CheckVersion if the contract is
	// being updated from its current version.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// CheckVersion compares the running contract version with the window of
// versions an update is supported from and panics when the update cannot
// be applied.
func CheckVersion(from int) {
	if from < PrevVersion {
		panic(ErrVersionMismatch + ": expected >=" + std.Itoa(PrevVersion, 10))
	}
	if from == Version {
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
}

// AppendVersion appends the current contract version to the list of update
// arguments, so the updated code can see what it is migrating from.
func AppendVersion(data interface{}) []interface{} {
	if data == nil {
		return []interface{}{Version}
	}
	return append(data.([]interface{}), Version)
}
