package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv  = "STOREFRONT_APP_ENV"
	EnvPort    = "STOREFRONT_APP_PORT"
	EnvLogLvl  = "STOREFRONT_LOG_LEVEL"
	EnvDBDSN   = "STOREFRONT_DB_DSN"
	EnvDBHost  = "STOREFRONT_DB_HOST"
	EnvDBUser  = "STOREFRONT_DB_USER"
	EnvDBName  = "STOREFRONT_DB_NAME"
	EnvDBPass  = "STOREFRONT_DB_PASSWORD"
	EnvDBPort  = "STOREFRONT_DB_PORT"
	EnvUseLite = "STOREFRONT_USE_SQLITE"

	EnvRedisURL   = "STOREFRONT_REDIS_URL"
	EnvJWTSecret  = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer  = "STOREFRONT_JWT_ISSUER"
	EnvJWTExpMins = "STOREFRONT_JWT_EXPIRATION_MINUTES"

	EnvBreakerFailures = "STOREFRONT_STOREDPROC_BREAKER_FAILURES"
	EnvCORSOrigins     = "STOREFRONT_CORS_ALLOWED_ORIGINS"

	// EnvTestDatabaseDSN points integration tests at a real Postgres instance.
	EnvTestDatabaseDSN = "STOREFRONT_TEST_DATABASE_DSN"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
