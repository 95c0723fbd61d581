package config

const EnvPrefix = "PHARMAPOS"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StoreDriverRedis  = "redis"
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

const (
	EnvAppEnv         = "PHARMAPOS_APP_ENV"
	EnvPort           = "PHARMAPOS_APP_PORT"
	EnvLogLevel       = "PHARMAPOS_LOG_LEVEL"
	EnvBackendBaseURL = "PHARMAPOS_BACKEND_BASE_URL"
	EnvBackendTimeout = "PHARMAPOS_BACKEND_TIMEOUT"
	EnvStoreDriver    = "PHARMAPOS_STORE_DRIVER"
	EnvSQLitePath     = "PHARMAPOS_SQLITE_PATH"
	EnvRedisURL       = "PHARMAPOS_REDIS_URL"
	EnvPaymentMethods = "PHARMAPOS_POS_PAYMENT_METHODS"
	EnvOrdersPageSize = "PHARMAPOS_ORDERS_PAGE_SIZE"
)
