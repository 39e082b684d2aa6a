package httpapi

// Error kinds surfaced in error bodies. Clients branch on kind, humans
// read message.
const (
	KindValidation   = "validation_error"
	KindNotFound     = "not_found"
	KindInvalidPatch = "invalid_patch"
	KindStorage      = "storage_failure"
)

type ErrorDetail struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Fields  []string `json:"fields,omitempty"`
}

type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

func fail(kind, message string, fields ...string) ErrorBody {
	return ErrorBody{Error: ErrorDetail{Kind: kind, Message: message, Fields: fields}}
}
