package httpdto

type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(err string, code string) Response[any] {
	return Response[any]{
		Success: false,
		Error:   err,
		Code:    code,
	}
}

// RateLimitedResponse carries retry hints alongside the error body.
type RateLimitedResponse struct {
	Error          string `json:"error"`
	Code           string `json:"code"`
	RetryAfterSecs int64  `json:"retry_after_secs"`
}
