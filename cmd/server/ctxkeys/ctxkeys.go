// Package ctxkeys names the fiber Locals shared between middlewares and handlers.
package ctxkeys

const (
	// SubjectKey holds the "sub" claim of a verified token.
	SubjectKey = "subject"
	// ParentCtxKey carries the request context into websocket handlers.
	ParentCtxKey = "parent_ctx"
	// QueryKey carries query values into websocket handlers.
	QueryKey = "ws_query"
)
