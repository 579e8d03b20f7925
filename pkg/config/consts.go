package config

// EnvPrefix is applied by envconfig on top of the explicit tags below.
const EnvPrefix = "REMITROUTE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "REMITROUTE_DB_DSN"
	EnvDBHost = "REMITROUTE_DB_HOST"
	EnvDBUser = "REMITROUTE_DB_USER"
	EnvDBName = "REMITROUTE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
