package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicUserMiddleware tags the request's New Relic transaction with the
// authenticated user and records handler errors on it. It must run after
// nrgin.Middleware and AuthMiddleware; without a transaction it does nothing.
func NewRelicUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if user, ok := CurrentUser(c); ok {
			txn.AddAttribute("user.id", user.ID)
			txn.AddAttribute("user.type", string(user.Type))
		}

		c.Next()

		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
