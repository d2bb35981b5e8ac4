package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "COURSEFLOW"

type (
	Config struct {
		Env      string
		Debug    bool
		TestMode bool
		AppName  string
		Build    string
		Server   ServerConfig
		Storage  StorageConfig
		Database DatabaseConfig
		Gemini   GeminiConfig
		Uploads  UploadsConfig
		Mirror   MirrorConfig
		Calendar CalendarConfig

		RollbarToken     string
		ClearDataOnStart bool
	}

	ServerConfig struct {
		Address         string
		DebugAddress    string // expvar/pprof, disabled when empty
		Host            string
		ShutdownTimeout time.Duration
		DisableReqLogs  bool
		BodyLimit       string
	}

	StorageConfig struct {
		Engine string // jsonfile | memory | postgres
		Path   string
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	GeminiConfig struct {
		APIKey  string
		Model   string
		BaseURL string
		Timeout time.Duration
	}

	UploadsConfig struct {
		Dir string
	}

	MirrorConfig struct {
		URL     string
		Timeout time.Duration
	}

	CalendarConfig struct {
		UpcomingDays int
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func setDefaults(v *viper.Viper) {
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "CourseFlow")
	v.SetDefault("build", "develop")

	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.debugAddress", "")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableRequestLogs", false)
	v.SetDefault("server.bodyLimit", "10M")

	v.SetDefault("storage.engine", "jsonfile")
	v.SetDefault("storage.path", "database.json")

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "courseflow")
	v.SetDefault("database.user", "courseflow")
	v.SetDefault("database.password", "")
	v.SetDefault("database.adminUser", "")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("gemini.apiKey", "")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("gemini.baseURL", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", 60*time.Second)

	v.SetDefault("uploads.dir", "uploads")

	v.SetDefault("mirror.url", "")
	v.SetDefault("mirror.timeout", 5*time.Second)

	v.SetDefault("calendar.upcomingDays", 30)

	v.SetDefault("rollbar.token", "")
	v.SetDefault("dev.clearDataOnStart", false)
}

// NewConfig reads the configuration from defaults, `config/.env.<env>` and the environment.
// Environment keys are prefixed with COURSEFLOW_ and use underscores for nesting (COURSEFLOW_SERVER_ADDRESS).
func NewConfig() *Config {
	env := os.Getenv("ENV") // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	env = strings.ToUpper(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v := viper.New()
	setDefaults(v)
	if env == "TEST" {
		v.SetDefault("testMode", true)
		v.SetDefault("storage.engine", "memory")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// unprefixed names kept for existing deployments
	_ = v.BindEnv("gemini.apiKey", envPrefix+"_GEMINI_APIKEY", "GEMINI_API_KEY")
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envPrefix+"_SERVER_ADDRESS") == "" {
		v.Set("server.address", ":"+port)
	}

	return &Config{
		Env:      env,
		Debug:    v.GetBool("debug"),
		TestMode: v.GetBool("testMode"),
		AppName:  v.GetString("appName"),
		Build:    v.GetString("build"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			Host:            v.GetString("server.host"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			DisableReqLogs:  v.GetBool("server.disableRequestLogs"),
			BodyLimit:       v.GetString("server.bodyLimit"),
		},
		Storage: StorageConfig{
			Engine: strings.ToLower(v.GetString("storage.engine")),
			Path:   v.GetString("storage.path"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
		},
		Gemini: GeminiConfig{
			APIKey:  v.GetString("gemini.apiKey"),
			Model:   v.GetString("gemini.model"),
			BaseURL: v.GetString("gemini.baseURL"),
			Timeout: v.GetDuration("gemini.timeout"),
		},
		Uploads:  UploadsConfig{Dir: v.GetString("uploads.dir")},
		Mirror:   MirrorConfig{URL: v.GetString("mirror.url"), Timeout: v.GetDuration("mirror.timeout")},
		Calendar: CalendarConfig{UpcomingDays: v.GetInt("calendar.upcomingDays")},

		RollbarToken:     v.GetString("rollbar.token"),
		ClearDataOnStart: v.GetBool("dev.clearDataOnStart"),
	}
}
