package contextkeys

type contextKey string

// DBContextKey stores the *gorm.DB (pool or transaction) for a request.
const DBContextKey = contextKey("db")

// Gin context keys set by the auth middleware.
const (
	UserIDKey = "userID"
	ClaimsKey = "claims"
)
