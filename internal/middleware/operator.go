package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

const operatorCtxKey = contextKey("operator")

// DefaultOperator is recorded on entries when no operator header is
// present (scheduled jobs, seeding).
const DefaultOperator = "system"

// OperatorMiddleware reads the back-office operator reference from the
// X-Operator header and stores it in the request context. Every journal
// entry and recalculation run is attributed to this value.
func OperatorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		operator := strings.TrimSpace(c.GetHeader("X-Operator"))
		if operator == "" {
			operator = DefaultOperator
		}
		ctx := context.WithValue(c.Request.Context(), operatorCtxKey, operator)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetOperatorFromCtx retrieves the operator reference from the context.
func GetOperatorFromCtx(ctx context.Context) string {
	if op, ok := ctx.Value(operatorCtxKey).(string); ok && op != "" {
		return op
	}
	return DefaultOperator
}
