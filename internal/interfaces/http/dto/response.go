package dto

// Response is the envelope every endpoint answers with. Failed responses
// carry a machine readable code and the request ID as well.
type Response struct {
	Succeeded bool     `json:"succeeded"`
	Messages  []string `json:"messages"`
	Data      any      `json:"data"`
	Code      string   `json:"code,omitempty"`
	RequestID string   `json:"requestId,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any, messages ...string) Response {
	if messages == nil {
		messages = []string{}
	}
	return Response{
		Succeeded: true,
		Messages:  messages,
		Data:      data,
	}
}

// NewErrorResponse creates a failed response. A failure always carries at
// least one message.
func NewErrorResponse(code, requestID string, messages ...string) Response {
	if len(messages) == 0 {
		messages = []string{DefaultMessage(code)}
	}
	return Response{
		Succeeded: false,
		Messages:  messages,
		Data:      nil,
		Code:      code,
		RequestID: requestID,
	}
}

// ExportLink is returned when a printed document is stored instead of streamed
type ExportLink struct {
	Key       string `json:"key" example:"pick-lists/PL-000001-20240102T150405.pdf"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// IDResponse is returned by actions that only report the affected ID
type IDResponse struct {
	ID uint `json:"id" example:"1"`
}
