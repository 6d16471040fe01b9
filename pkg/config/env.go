package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "STOREFRONT_APP_ENV"
	EnvPort         = "STOREFRONT_APP_PORT"
	EnvDBDSN        = "STOREFRONT_DB_DSN"
	EnvDBHost       = "STOREFRONT_DB_HOST"
	EnvDBUser       = "STOREFRONT_DB_USER"
	EnvDBName       = "STOREFRONT_DB_NAME"
	EnvRedisURL     = "STOREFRONT_REDIS_URL"
	EnvJWTSecret    = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer    = "STOREFRONT_JWT_ISSUER"
	EnvGuestTTL     = "STOREFRONT_GUEST_TTL"
	EnvCheckoutTTL  = "STOREFRONT_CHECKOUT_TTL"
	EnvCORSOrigins  = "STOREFRONT_CORS_ALLOWED_ORIGINS"
	EnvAutoMigrate  = "STOREFRONT_AUTO_MIGRATE"
	EnvOrderRefSalt = "STOREFRONT_ORDER_REFERENCE_SALT"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
