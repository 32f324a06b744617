// Package errors provides structured error handling with i18n support.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Modifier construction errors
	CodeModifierMissingSource     Code = "MODIFIER_MISSING_SOURCE"
	CodeModifierMissingSourceName Code = "MODIFIER_MISSING_SOURCE_NAME"
	CodeModifierMissingTarget     Code = "MODIFIER_MISSING_TARGET"
	CodeModifierMissingType       Code = "MODIFIER_MISSING_TYPE"
	CodeModifierInvalidSource     Code = "MODIFIER_INVALID_SOURCE"
	CodeModifierInvalidType       Code = "MODIFIER_INVALID_TYPE"
	CodeModifierInvalidTarget     Code = "MODIFIER_INVALID_TARGET"
	CodeModifierValueNotFinite    Code = "MODIFIER_VALUE_NOT_FINITE"

	// Reconciliation errors
	CodeReconcileAuthorityConflict Code = "RECONCILE_AUTHORITY_CONFLICT"

	// Engine resolution errors
	CodeEngineNilCharacter   Code = "ENGINE_NIL_CHARACTER"
	CodeEngineUnknownSkill   Code = "ENGINE_UNKNOWN_SKILL"
	CodeEngineUnknownDefense Code = "ENGINE_UNKNOWN_DEFENSE"

	// Character document errors
	CodeCharacterUnknownAbility Code = "CHARACTER_UNKNOWN_ABILITY"
	CodeCharacterInvalidTrack   Code = "CHARACTER_INVALID_CONDITION_TRACK"

	// Content library errors
	CodeContentUnknownKind   Code = "CONTENT_UNKNOWN_KIND"
	CodeContentInvalidEffect Code = "CONTENT_INVALID_EFFECT"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)
