package constants

type contextKey string

const (
	PoolKey      contextKey = "pool"
	TxKey        contextKey = "tx"
	LoggerKey    contextKey = "logger"
	TenantIDKey  contextKey = "tenant-id"
	RequestStart contextKey = "request-start"
)
