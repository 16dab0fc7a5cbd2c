package config

import "github.com/spf13/viper"

type Config struct {
	Port           string `mapstructure:"APP_PORT"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBName         string `mapstructure:"DB_NAME"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPort         string `mapstructure:"DB_PORT"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	GoogleClientId string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleSecretId string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	RedirectURL    string `mapstructure:"REDIRECT_URL"`
	FrontendURL    string `mapstructure:"FRONTEND_URL"`
	AllowedDomain  string `mapstructure:"ALLOWED_DOMAIN"`
}

var envs = []string{
	"APP_PORT", "DB_HOST", "DB_NAME", "DB_USER", "DB_PORT", "DB_PASSWORD",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "REDIRECT_URL", "FRONTEND_URL", "ALLOWED_DOMAIN",
}

func LoadConfig() (Config, error) {
	var config Config
	viper.AddConfigPath("./")
	viper.SetConfigFile(".env")
	viper.ReadInConfig()
	for _, env := range envs {
		if err := viper.BindEnv(env); err != nil {
			return config, err
		}
	}
	viper.SetDefault("APP_PORT", "8000")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("ALLOWED_DOMAIN", "northsouth.edu")
	if err := viper.Unmarshal(&config); err != nil {
		return config, err
	}
	return config, nil
}
