package config

import "github.com/spf13/viper"

const (
	defaultAppEnv            = "dev"
	defaultAppLogLevel       = "info"
	defaultServerAddr        = ":9992"
	defaultStopOutPercent    = 80.0
	defaultMarginCallPercent = 50.0
	defaultToppingUpPercent  = 0.0
	defaultQueueSize         = 1024
	defaultArchivePath       = "/data/db/mtengine.db"
)

func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.env", defaultAppEnv)
	v.SetDefault("app.log_level", defaultAppLogLevel)
	v.SetDefault("server.addr", defaultServerAddr)
	v.SetDefault("engine.stop_out_percent", defaultStopOutPercent)
	v.SetDefault("engine.margin_call_percent", defaultMarginCallPercent)
	v.SetDefault("engine.topping_up_percent", defaultToppingUpPercent)
	v.SetDefault("engine.queue_size", defaultQueueSize)
	v.SetDefault("archive.path", defaultArchivePath)
}
