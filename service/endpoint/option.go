package endpoint

import "github.com/gin-gonic/gin"

type options struct {
	mode      string
	accessLog bool
}

// Option customises the server
type Option func(*options)

// WithDebug enables gin debug mode.
func WithDebug() Option {
	return func(o *options) {
		o.mode = gin.DebugMode
	}
}

// WithAccessLog enables per request access logging.
func WithAccessLog() Option {
	return func(o *options) {
		o.accessLog = true
	}
}
