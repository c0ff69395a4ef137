package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/viewident/viewident/internal/app"
	"github.com/viewident/viewident/internal/identity"
	"github.com/viewident/viewident/internal/platform/logging"
	"github.com/viewident/viewident/internal/platform/telemetry"
)

// ContextKeyRequestView is the gin context key for the request view.
const ContextKeyRequestView = "request_view"

// RequestView is the view of the request this middleware layer holds.
// It embeds identity.Meta so journal state rides on the view itself, and
// its Raw field relates it to the underlying request, which is what later
// stages holding their own wrappers converge on.
type RequestView struct {
	identity.Meta

	Raw *http.Request
}

// Scope returns middleware that opens a journal entry for each request
// and closes it once the handler chain completes. The entry is keyed by
// the request's canonical identity, so any stage that wraps the request
// in its own view reaches the same entry.
//
// On completion the entry is finished with the response status and
// shipped to the configured sinks. Shipping failures are logged, never
// surfaced to the client.
func Scope(journal *app.Journal, metrics *telemetry.JournalMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		view := &RequestView{Meta: identity.NewMeta(), Raw: c.Request}
		c.Set(ContextKeyRequestView, view)

		entry := journal.Begin(view,
			GetRequestID(c),
			GetCorrelationID(c),
			c.Request.Method,
			c.Request.URL.Path,
		)
		if entry != nil {
			metrics.EntryOpened(c.Request.Context())
		}

		c.Next()

		if entry == nil {
			return
		}

		ctx := c.Request.Context()

		err := journal.Finish(ctx, view, c.Writer.Status())
		metrics.EntryClosed(ctx, err)

		if err != nil {
			logging.FromContext(ctx).WarnContext(ctx, "journal entry not fully shipped",
				"error", err,
			)
		}
	}
}

// GetRequestView retrieves the request view from the gin context.
// Returns nil if the scope middleware is not applied.
func GetRequestView(c *gin.Context) *RequestView {
	if v, exists := c.Get(ContextKeyRequestView); exists {
		if view, ok := v.(*RequestView); ok {
			return view
		}
	}

	return nil
}
