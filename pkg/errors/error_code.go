package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110
	ErrCodeInvalidType          ErrorCode = 111
	ErrCodeUnknownAsset         ErrorCode = 120
	ErrCodeUnknownCurrency      ErrorCode = 121
	ErrCodeUnknownTimeframe     ErrorCode = 122
	ErrCodeInvalidSchedule      ErrorCode = 123

	// Data errors (200-299)
	ErrCodeDataNotFound   ErrorCode = 200
	ErrCodeInvalidPrice   ErrorCode = 210
	ErrCodeSeriesMismatch ErrorCode = 211

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeFetchCancelled        ErrorCode = 701
	ErrCodeOrchestratorClosed    ErrorCode = 702
)
