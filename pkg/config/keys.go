package config

const (
	KeyAPIServerUrl           = "apiServerUrl"
	KeyAuth0Audience          = "auth0.audience"
	KeyAuth0CallbackURL       = "auth0.callbackURL"
	KeyAuth0ClientId          = "auth0.clientId"
	KeyAuth0Url               = "auth0.url"
	KeyBind                   = "bind"
	KeyDatabaseDSN            = "databaseDsn"
	KeyEnableMetrics          = "enableMetrics"
	KeyLogLevel               = "logLevel"
	KeyMetricsBind            = "metricsBind"
	KeyMetricsPort            = "metricsPort"
	KeyMigrationsPath         = "migrationsPath"
	KeyOrigins                = "origins"
	KeyPort                   = "port"
	KeyProduction             = "production"
	KeyTLSCertPEM             = "tlsCertPEM"
	KeyTLSKeyPEM              = "tlsKeyPEM"
	KeyTrustedRequestIdHeader = "trustedRequestIdHeader"
)
