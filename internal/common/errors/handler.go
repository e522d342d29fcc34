// internal/common/errors/handler.go
package errors

// Handler normalizes errors and logs the ones that are faults.
type Handler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewHandler(logger Logger) *Handler {
	return &Handler{logger: logger}
}

// Handle converts err into a StandardError. Server faults are logged with their
// cause; expected outcomes are logged at warn level only when verbose detail
// exists.
func (h *Handler) Handle(operation string, err error) *StandardError {
	stdErr := Normalize(err)
	if stdErr == nil {
		return nil
	}

	fields := map[string]interface{}{
		"operation": operation,
		"errorCode": string(stdErr.Code),
		"message":   stdErr.Message,
	}
	if stdErr.Details != "" {
		fields["details"] = stdErr.Details
	}

	if !IsUserFacing(stdErr.Code) {
		h.logger.Error("operation failed", fields)
	} else if stdErr.Details != "" {
		h.logger.Warn("operation rejected", fields)
	}

	return stdErr
}
