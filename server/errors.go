package server

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest 表示请求缺少必填字段或取值不合法。
var ErrInvalidRequest = errors.New("invalid request")

func invalidRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
