package apierrors

type ErrorCode = string

const (
	// ErrorCodeUnknown should not be used directly, it only indicates a failure in the error handling system in such a way that an error code was not assigned properly.
	ErrorCodeUnknown ErrorCode = "unknown"

	// ErrorCodeUnexpectedFailure signals an unexpected failure such as a 500 Internal Server Error.
	ErrorCodeUnexpectedFailure ErrorCode = "unexpected_failure"

	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeBadJSON          ErrorCode = "bad_json"
	ErrorCodeNotFound         ErrorCode = "not_found"

	ErrorCodeMessageUnparsable   ErrorCode = "siws_message_unparsable"
	ErrorCodeMessageInvalid      ErrorCode = "siws_message_invalid"
	ErrorCodeMessageMalformedURI ErrorCode = "siws_malformed_uri"
	ErrorCodeMessageInvalidType  ErrorCode = "siws_invalid_field_type"
	ErrorCodeMessageUnresolved   ErrorCode = "siws_issued_at_unresolved"
	ErrorCodeMessageTooLarge     ErrorCode = "siws_message_too_large"
	ErrorCodeUnknownParserMode   ErrorCode = "siws_unknown_parser_mode"
)
