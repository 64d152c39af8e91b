// Package errors provides structured error handling for the game service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Scenario errors
	CodeScenarioNameEmpty        Code = "SCENARIO_NAME_EMPTY"
	CodeScenarioNameTaken        Code = "SCENARIO_NAME_TAKEN"
	CodeScenarioInvalidMode      Code = "SCENARIO_INVALID_MODE"
	CodeScenarioInvalidCapacity  Code = "SCENARIO_INVALID_CAPACITY"
	CodeScenarioRolesEmpty       Code = "SCENARIO_ROLES_EMPTY"
	CodeScenarioInvalidThreshold Code = "SCENARIO_INVALID_THRESHOLD"

	// Game errors
	CodeGameEmptyScenarioID Code = "GAME_EMPTY_SCENARIO_ID"
	CodeGameInactive        Code = "GAME_INACTIVE"
	CodeGameFull            Code = "GAME_FULL"

	// Player errors
	CodePlayerEmptyDisplayName Code = "PLAYER_EMPTY_DISPLAY_NAME"
	CodePlayerEmptyGameID      Code = "PLAYER_EMPTY_GAME_ID"
	CodePlayerInvalidRole      Code = "PLAYER_INVALID_ROLE"
	CodePlayerInvalidVitals    Code = "PLAYER_INVALID_VITALS"

	// Request errors
	CodeBadRequest Code = "BAD_REQUEST"

	// Turn errors
	CodeInvalidState      Code = "INVALID_STATE"
	CodeNoPendingOptions  Code = "NO_PENDING_OPTIONS"
	CodeOptionNotFound    Code = "OPTION_NOT_FOUND"
	CodeValidationFailure Code = "VALIDATION_FAILURE"
	CodeUpstreamFailure   Code = "UPSTREAM_FAILURE"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input, wrong phase
	case CodeScenarioNameEmpty,
		CodeScenarioInvalidMode,
		CodeScenarioInvalidCapacity,
		CodeScenarioRolesEmpty,
		CodeScenarioInvalidThreshold,
		CodeGameEmptyScenarioID,
		CodeGameInactive,
		CodeGameFull,
		CodePlayerEmptyDisplayName,
		CodePlayerEmptyGameID,
		CodePlayerInvalidRole,
		CodePlayerInvalidVitals,
		CodeBadRequest,
		CodeInvalidState,
		CodeNoPendingOptions:
		return http.StatusBadRequest

	// Not found - missing entities
	case CodeNotFound, CodeOptionNotFound:
		return http.StatusNotFound

	// Conflict - uniqueness violations
	case CodeScenarioNameTaken:
		return http.StatusConflict

	// Bad gateway - the narrator collaborator failed
	case CodeUpstreamFailure:
		return http.StatusBadGateway

	// Internal - narrator output beyond recovery, unknown failures
	case CodeValidationFailure, CodeUnknown:
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}
