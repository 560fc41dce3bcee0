package response

import "linker_auth/internal/lib/validation"

type Response struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	StatusOK    = "OK"
	StatusError = "Error"
)

func OK() Response {
	return Response{
		Status: StatusOK,
	}
}

func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// Fields renders domain validation errors as field -> message.
func Fields(errs validation.Errors) map[string]string {
	return errs.Map()
}
