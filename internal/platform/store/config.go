package store

import (
	"time"

	"epimetrics/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Enabled      bool
	URL          string
	ClientName   string
	ClientTag    string
	MaxOpenConns int
}

// RedisConfig configures redis connectivity for the series cache
type RedisConfig struct {
	Enabled  bool
	Addr     string
	DB       int
	Password string
}

// FromConfig reads SERVICE_PGSQL_*, SERVICE_CLICKHOUSE_* and SERVICE_REDIS_* from root.
// A backend is enabled by ENABLED, which defaults to true for postgres only; an enabled backend requires its DBURL/ADDR.
func FromConfig(root config.Conf, app string) Config {
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	rdCfg := root.Prefix("SERVICE_REDIS_")

	c := Config{AppName: app}
	if c.PG.Enabled = pgCfg.MayBool("ENABLED", true); c.PG.Enabled {
		c.PG.URL = pgCfg.MustString("DBURL")
		c.PG.MaxConns = int32(pgCfg.MayInt("MAX_CONNS", 4))
		c.PG.SlowQueryMs = pgCfg.MayInt("SLOW_MS", 500)
		c.PG.LogSQL = pgCfg.MayBool("LOG_SQL", false)
		c.PG.ConnectRetries = pgCfg.MayInt("CONNECT_RETRIES", 20)
		c.PG.PingTimeout = pgCfg.MayDuration("PING_TIMEOUT", 3*time.Second)
	}
	if c.CH.Enabled = chCfg.MayBool("ENABLED", false); c.CH.Enabled {
		c.CH.URL = chCfg.MustString("DBURL")
		c.CH.ClientTag = chCfg.MayString("CLIENT_TAG", "")
		c.CH.MaxOpenConns = chCfg.MayInt("MAX_OPEN_CONNS", 8)
	}
	if c.RDS.Enabled = rdCfg.MayBool("ENABLED", false); c.RDS.Enabled {
		c.RDS.Addr = rdCfg.MustString("ADDR")
		c.RDS.DB = rdCfg.MayInt("DB", 0)
		c.RDS.Password = rdCfg.MayString("PASSWORD", "")
	}
	return c
}
