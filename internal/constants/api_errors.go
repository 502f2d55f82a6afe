package constants

// API client error codes
const (
	ErrCodeNetworkError   = "NETWORK_ERROR"
	ErrCodeHTTPError      = "HTTP_ERROR"
	ErrCodeDecodeError    = "DECODE_ERROR"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// APIErrorMessages maps error codes to human-readable messages
var APIErrorMessages = map[string]string{
	ErrCodeNetworkError:   "Unable to reach the flights API. Please check your connection",
	ErrCodeHTTPError:      "The flights API rejected the request",
	ErrCodeDecodeError:    "The flights API returned an invalid response",
	ErrCodeInvalidRequest: "The request could not be built",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := APIErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
