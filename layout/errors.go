package layout

import "fmt"

// Collaborator names used in CollaboratorError.
const (
	CollaboratorFontMetrics = "font-metrics"
	CollaboratorRenderer    = "renderer"
	CollaboratorDelivery    = "delivery"
)

// ConfigError 表示排版参数不合法，在产生任何 token 之前返回。
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// CollaboratorError 包装外部协作方（字体、渲染器、投递）返回的错误。
type CollaboratorError struct {
	Collaborator string
	Op           string
	Err          error
}

func (e *CollaboratorError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Collaborator, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Collaborator, e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }
