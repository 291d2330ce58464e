package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Profile errors
	CodeProfileNameEmpty       Code = "PROFILE_NAME_EMPTY"
	CodeProfileEmptyID         Code = "PROFILE_EMPTY_ID"
	CodeProfileDuplicateSignal Code = "PROFILE_DUPLICATE_SIGNAL"
	CodeProfileNoDefault       Code = "PROFILE_NO_DEFAULT"

	// Route errors
	CodeRouteEmptyID       Code = "ROUTE_EMPTY_ID"
	CodeRouteInvalidSignal Code = "ROUTE_INVALID_SIGNAL"
	CodeRouteFieldUnknown  Code = "ROUTE_FIELD_UNKNOWN"
	CodeRouteInvalidStatus Code = "ROUTE_INVALID_STATUS"

	// Hop chain errors
	CodeHopInvalidPosition Code = "HOP_INVALID_POSITION"
	CodeHopNotRemovable    Code = "HOP_NOT_REMOVABLE"
	CodeHopUnknownKind     Code = "HOP_UNKNOWN_KIND"
	CodeHopMetaMismatch    Code = "HOP_META_MISMATCH"

	// Mode / override errors
	CodeModeInvalid                Code = "ROUTE_MODE_INVALID"
	CodeModeProfileRequired        Code = "ROUTE_MODE_PROFILE_REQUIRED"
	CodeEditScopeRequired          Code = "EDIT_SCOPE_REQUIRED"
	CodeEditScopeInvalid           Code = "EDIT_SCOPE_INVALID"
	CodeOverrideDispositionInvalid Code = "OVERRIDE_DISPOSITION_INVALID"

	// Binder errors
	CodeBinderEmptyID Code = "BINDER_EMPTY_ID"

	// Lock errors
	CodeLockNotAllowed         Code = "LOCK_NOT_ALLOWED"
	CodeUnlockReasonRequired   Code = "UNLOCK_REASON_REQUIRED"
	CodeUnlockNotLocked        Code = "UNLOCK_NOT_LOCKED"
	CodeSnapshotVersionUnknown Code = "SNAPSHOT_VERSION_UNKNOWN"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeProfileNameEmpty,
		CodeProfileEmptyID,
		CodeProfileDuplicateSignal,
		CodeRouteEmptyID,
		CodeRouteInvalidSignal,
		CodeRouteFieldUnknown,
		CodeRouteInvalidStatus,
		CodeHopInvalidPosition,
		CodeHopUnknownKind,
		CodeHopMetaMismatch,
		CodeModeInvalid,
		CodeModeProfileRequired,
		CodeEditScopeRequired,
		CodeEditScopeInvalid,
		CodeOverrideDispositionInvalid,
		CodeBinderEmptyID,
		CodeUnlockReasonRequired:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeProfileNoDefault,
		CodeHopNotRemovable,
		CodeLockNotAllowed,
		CodeUnlockNotLocked:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeSnapshotVersionUnknown:
		return codes.NotFound

	default:
		return codes.Internal
	}
}
