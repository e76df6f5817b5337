package stashlogix

const (
	// INVALID_ARGUMENT_ERROR_CODE represents an error for invalid input arguments.
	INVALID_ARGUMENT_ERROR_CODE = 3
	// DEADLINE_EXCEEDED_ERROR_CODE represents an error for a deadline expiring before completion.
	DEADLINE_EXCEEDED_ERROR_CODE = 4
	// NOT_FOUND_ERROR_CODE represents an error for a resource not being found.
	NOT_FOUND_ERROR_CODE = 5
	// PERMISSION_DENIED_ERROR_CODE represents an error for insufficient permissions.
	PERMISSION_DENIED_ERROR_CODE = 7
	// RESOURCE_EXHAUSTED_ERROR_CODE represents an error for an exhausted resource or quota.
	RESOURCE_EXHAUSTED_ERROR_CODE = 8
	// FAILED_PRECONDITION_ERROR_CODE represents an error for a failed precondition.
	FAILED_PRECONDITION_ERROR_CODE = 9
	// ABORTED_ERROR_CODE represents an error for an operation aborted before completion.
	ABORTED_ERROR_CODE = 10
	// INTERNAL_ERROR_CODE represents an internal server error.
	INTERNAL_ERROR_CODE = 13
)
