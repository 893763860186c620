package api

const (
	CategoryDatabase     = ErrorCategory("Database")
	CategoryUser         = ErrorCategory("User") // used for errors related to user input, validation, etc.
	CategoryForbidden    = ErrorCategory("Forbidden")
	CategoryUnauthorized = ErrorCategory("Unauthorized")
	CategoryNotFound     = ErrorCategory("NotFound")
	CategoryInternal     = ErrorCategory("Internal") // used for internal server errors, not related to bad user input
)

const (
	// General

	ErrorCreateFailure         = ErrorKey("ErrorCreateFailure")
	ErrorDestroyFailure        = ErrorKey("ErrorDestroyFailure")
	ErrorGenericInternalServer = ErrorKey("ErrorGenericInternalServer")
	ErrorForeignKeyViolation   = ErrorKey("ErrorForeignKeyViolation")
	ErrorInvalidRequestBody    = ErrorKey("ErrorInvalidRequestBody")
	ErrorMustBeAValidUUID      = ErrorKey("ErrorMustBeAValidUUID")
	ErrorNoRows                = ErrorKey("ErrorNoRows")
	ErrorNotAuthorized         = ErrorKey("ErrorNotAuthorized")
	ErrorQueryFailure          = ErrorKey("ErrorQueryFailure")
	ErrorSaveFailure           = ErrorKey("ErrorSaveFailure")
	ErrorTransactionNotFound   = ErrorKey("ErrorTransactionNotFound")
	ErrorUniqueKeyViolation    = ErrorKey("ErrorUniqueKeyViolation")
	ErrorUnknown               = ErrorKey("ErrorUnknown")
	ErrorUpdateFailure         = ErrorKey("ErrorUpdateFailure")
	ErrorValidation            = ErrorKey("ErrorValidation")

	// Session / identity
	ErrorNoSession           = ErrorKey("ErrorNoSession")
	ErrorNotOnboarded        = ErrorKey("ErrorNotOnboarded")
	ErrorCreatingAccessToken = ErrorKey("ErrorCreatingAccessToken")
	ErrorFindingAccessToken  = ErrorKey("ErrorFindingAccessToken")
	ErrorInvalidCredentials  = ErrorKey("ErrorInvalidCredentials")
	ErrorUserBlocked         = ErrorKey("ErrorUserBlocked")

	// Resources
	ErrorInvalidResourceID = ErrorKey("ErrorInvalidResourceID")
	ErrorResourceNotFound  = ErrorKey("ErrorResourceNotFound")
	ErrorUserNotFound      = ErrorKey("ErrorUserNotFound")
	ErrorGuestNotFound     = ErrorKey("ErrorGuestNotFound")
	ErrorCaseNotFound      = ErrorKey("ErrorCaseNotFound")

	// File / asset upload
	ErrorFileAlreadyLinked       = ErrorKey("ErrorFileAlreadyLinked")
	ErrorFilenameRequired        = ErrorKey("ErrorFilenameRequired")
	ErrorReceivingFile           = ErrorKey("ErrorReceivingFile")
	ErrorStoreFileBadContentType = ErrorKey("ErrorStoreFileBadContentType")
	ErrorStoreFileTooLarge       = ErrorKey("ErrorStoreFileTooLarge")
	ErrorUnableToReadFile        = ErrorKey("ErrorUnableToReadFile")
	ErrorUnableToStoreFile       = ErrorKey("ErrorUnableToStoreFile")
	ErrorUploadFailed            = ErrorKey("ErrorUploadFailed")

	// Case assembly
	ErrorCaseNotPending       = ErrorKey("ErrorCaseNotPending")
	ErrorClassificationFailed = ErrorKey("ErrorClassificationFailed")
	ErrorSubmissionFailed     = ErrorKey("ErrorSubmissionFailed")
	ErrorReportGeneration     = ErrorKey("ErrorReportGeneration")
)
