package errors

const (
	ErrInvalidRequestBody = "Invalid request body"
	ErrDBOperationFailed  = "Database operation failed"
	ErrDBRecordNotFound   = "Database record not found"
	ErrTaskNotFound       = "Task not found"
	ErrNotTaskCreator     = "Caller does not own this task"
	ErrMissingSession     = "Missing session identifier"
	ErrSandboxDisabled    = "Wallet sandbox is disabled"
	ErrInsufficientFunds  = "Insufficient wallet balance"
	ErrWorkerOffline      = "Worker has no recent heartbeat"
)
