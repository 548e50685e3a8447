package util

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrSessionNotFound = errors.New("grading session not found")
	ErrAnswerNotFound  = errors.New("answer not found")
	ErrNoAnswers       = errors.New("assignment has no answers")
	ErrInvalidSession  = errors.New("invalid session token")
)

// NetworkError 后端请求失败（请求被拒绝或返回非 2xx）
type NetworkError struct {
	Message string
	Status  int
	Err     error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError 用户输入不合法，例如文件数量或类型错误
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ConfigurationError 配置与数据不匹配，例如问题数超过调色板颜色数
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func NewConfigurationError(format string, args ...interface{}) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

func NewNetworkError(message string, status int, err error) error {
	return &NetworkError{Message: message, Status: status, Err: err}
}

// UserMessage 返回展示给用户的错误信息，以及对应的 HTTP 状态码
func UserMessage(err error) (int, string) {
	var (
		netErr *NetworkError
		valErr *ValidationError
		cfgErr *ConfigurationError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest, valErr.Message
	case errors.As(err, &cfgErr):
		return http.StatusInternalServerError, cfgErr.Message
	case errors.As(err, &netErr):
		return http.StatusBadGateway, netErr.Message
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrAnswerNotFound), errors.Is(err, ErrNoAnswers):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrInvalidSession):
		return http.StatusUnauthorized, err.Error()
	}
	return http.StatusInternalServerError, "Internal server error"
}
