package core

import (
	"fmt"
	"log"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName  string
		Env      string // DEV (local; default), TEST, QA, PROD
		Debug    bool
		TestMode bool
		Build    string

		SecretKey        string
		SendgridApiKey   string
		RollbarToken     string
		FromEmailName    string
		FromEmailAddress string

		Server   ServerConfig
		Storage  StorageConfig
		Database DatabaseConfig
		Grader   GraderConfig
	}

	ServerConfig struct {
		Host               string
		Port               int
		JWTExpirationDelta time.Duration
	}

	// StorageConfig selects the attempt blob store backend.
	StorageConfig struct {
		Engine     string // inmem | sqlite | postgres
		SqlitePath string
	}

	DatabaseConfig struct {
		Engine        string
		Name          string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	GraderConfig struct {
		BaseURL string
		Timeout time.Duration
	}
)

func (c ServerConfig) Address() string   { return fmt.Sprintf("%s:%d", c.Host, c.Port) }
func (c DatabaseConfig) Address() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func (conf *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: conf.FromEmailName, Address: conf.FromEmailAddress}
}

func (conf *Config) IsProd() bool { return conf.Env == "PROD" }

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("appName", "Kipimo")
	v.SetDefault("secretKey", "w#cm3+2y&ae)0y^fqn59m$t(ko7s-h!n1+b^u@r4&4vpe#ygzk")
	v.SetDefault("fromEmailName", "Kipimo")
	v.SetDefault("fromEmailAddress", "noreply@localhost")
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("serverHost", "")
	v.SetDefault("serverPort", 8000)
	v.SetDefault("storageEngine", "inmem")
	v.SetDefault("sqlitePath", "kipimo.db")
	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbName", "kipimo")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("graderBaseUrl", "http://localhost:9000")
	v.SetDefault("graderTimeout", 15*time.Second)

	env := os.Getenv("ENV")
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := ".env." + strings.ToLower(env)
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:          v.GetString("appName"),
		Env:              env,
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		Build:            v.GetString("build"),
		SecretKey:        v.GetString("secretKey"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		FromEmailName:    v.GetString("fromEmailName"),
		FromEmailAddress: v.GetString("fromEmailAddress"),
		Server: ServerConfig{
			Host:               v.GetString("serverHost"),
			Port:               v.GetInt("serverPort"),
			JWTExpirationDelta: v.GetDuration("jwtExpirationDelta"),
		},
		Storage: StorageConfig{
			Engine:     v.GetString("storageEngine"),
			SqlitePath: v.GetString("sqlitePath"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Name:          v.GetString("dbName"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTls"),
		},
		Grader: GraderConfig{
			BaseURL: v.GetString("graderBaseUrl"),
			Timeout: v.GetDuration("graderTimeout"),
		},
	}
}
