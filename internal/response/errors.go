package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden           ErrCode = "FORBIDDEN"
	ErrApplicantAccessOnly ErrCode = "APPLICANT_ACCESS_ONLY"
	ErrStaffAccessOnly     ErrCode = "STAFF_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Exam-specific ─────────────────────────────────────────────────
	ErrNoDepartmentSelected  ErrCode = "NO_DEPARTMENT_SELECTED"
	ErrDepartmentClosed      ErrCode = "DEPARTMENT_CLOSED"
	ErrAttemptNotFound       ErrCode = "ATTEMPT_NOT_FOUND"
	ErrAttemptExpired        ErrCode = "EXPIRED"
	ErrNoQuestionsAvailable  ErrCode = "NO_QUESTIONS_AVAILABLE"
	ErrQuestionSetNotDraft   ErrCode = "QUESTION_SET_NOT_DRAFT"
	ErrAdmissionFormIDInUse  ErrCode = "ADMISSION_FORM_ID_IN_USE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Phone/email or password is incorrect."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "An authentication token is required."
	case ErrTokenInvalid:
		return "The authentication token is invalid."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrApplicantAccessOnly:
		return "This resource is restricted to applicants."
	case ErrStaffAccessOnly:
		return "This resource is restricted to staff."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Exam-specific ─────────────────────────────────────────────────
	case ErrNoDepartmentSelected:
		return "Please select a department first."
	case ErrDepartmentClosed:
		return "This department's admission window is not open."
	case ErrAttemptNotFound:
		return "Exam attempt not found."
	case ErrAttemptExpired:
		return "Time is over for this attempt."
	case ErrNoQuestionsAvailable:
		return "No questions are available for this department."
	case ErrQuestionSetNotDraft:
		return "This question set is not in DRAFT status."
	case ErrAdmissionFormIDInUse:
		return "This Admission Form ID is already in use."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
