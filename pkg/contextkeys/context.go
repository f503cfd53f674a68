package contextkeys

// Custom key type avoids collisions with other packages' context values.
type contextKey string

// DBContextKey holds the *gorm.DB (pool or transaction) for the request.
const DBContextKey = contextKey("db")
