package response

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Response is the envelope every API endpoint answers with. Exactly one of
// Data or Error is meaningful.
type Response struct {
	Data     any        `json:"data"`
	Error    *ErrorBody `json:"error,omitempty"`
	Metadata Metadata   `json:"metadata"`
}

// ErrorBody carries the machine code, its English message and any
// per-field validation messages.
type ErrorBody struct {
	Code    ErrCode           `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Metadata ties a response to its request for log correlation.
type Metadata struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// Success writes data with the given status.
func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, envelope(c, data, nil))
}

// Fail writes code with the status StatusFor pairs it with.
func Fail(c *gin.Context, code ErrCode) {
	c.JSON(StatusFor(code), envelope(c, nil, errorBody(code, nil)))
}

// FailWithFields is Fail plus field-level validation messages.
func FailWithFields(c *gin.Context, code ErrCode, fields map[string]string) {
	c.JSON(StatusFor(code), envelope(c, nil, errorBody(code, fields)))
}

// Abort is Fail for middleware: it also stops the handler chain.
func Abort(c *gin.Context, code ErrCode) {
	c.AbortWithStatusJSON(StatusFor(code), envelope(c, nil, errorBody(code, nil)))
}

func errorBody(code ErrCode, fields map[string]string) *ErrorBody {
	return &ErrorBody{Code: code, Message: GetMessage(code), Fields: fields}
}

func envelope(c *gin.Context, data any, errBody *ErrorBody) Response {
	id := RequestID(c)
	if id == "" {
		id = uuid.NewString()
	}
	return Response{
		Data:  data,
		Error: errBody,
		Metadata: Metadata{
			RequestID: id,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}
