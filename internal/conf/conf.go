package conf

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 EDUNEXUS_DATABASE_DSN 覆盖 database.dsn
const EnvPrefix = "EDUNEXUS"

// Load 加载配置文件，参数是配置文件的路径
func Load(confPath string) *viper.Viper {
	// .env 不存在时忽略
	_ = godotenv.Load()

	conf := viper.New()
	conf.SetConfigFile(confPath)
	conf.SetEnvPrefix(EnvPrefix)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	conf.AutomaticEnv()
	SetDefaultValues(conf)

	err := conf.ReadInConfig() // 读取配置信息
	if err != nil {
		panic(err) // 读取配置信息失败时，返回并退出程序
	}
	if err := ValidateConfig(conf); err != nil {
		panic(err)
	}
	return conf
}
