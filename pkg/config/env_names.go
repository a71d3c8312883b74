package config

// EnvPrefix namespaces every environment variable the engine reads.
const EnvPrefix = "SOURCING"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced from code and tests.
const (
	EnvAppEnv              = "SOURCING_APP_ENV"
	EnvDBDSN               = "SOURCING_DB_DSN"
	EnvRedisURL            = "SOURCING_REDIS_URL"
	EnvMarketplaceBaseURL  = "SOURCING_MARKETPLACE_BASE_URL"
	EnvMarketplaceAccount  = "SOURCING_MARKETPLACE_ACCOUNT"
	EnvMarketplaceUsername = "SOURCING_MARKETPLACE_USERNAME"
	EnvMarketplacePassword = "SOURCING_MARKETPLACE_PASSWORD"
	EnvBatchWorkers        = "SOURCING_BATCH_WORKERS"
	EnvMaxPerRegion        = "SOURCING_MAX_SUPPLIERS_PER_REGION"
)
