package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/assetdeck/assetdeck/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

func LoadEnv(envFiles []string) (int, error) {
	existingFiles := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existingFiles = append(existingFiles, file)
		}
	}

	if len(existingFiles) == 0 {
		return 0, nil
	}

	return len(existingFiles), godotenv.Load(existingFiles...)
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"assetdeck"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

// ImportOptions tunes the asset import pipeline.
type ImportOptions struct {
	// PreviewRows caps the per-row detail returned by a preview. Summary
	// counts always cover the whole file.
	PreviewRows int `env:"IMPORT_PREVIEW_ROWS" envDefault:"10"`
	// ErrorSummaryTop bounds the (field, message) aggregation in preview
	// responses regardless of file length.
	ErrorSummaryTop int `env:"IMPORT_ERROR_SUMMARY_TOP" envDefault:"5"`
	// FuzzyThreshold is the minimum similarity for a fuzzy duplicate verdict.
	FuzzyThreshold float64 `env:"IMPORT_FUZZY_THRESHOLD" envDefault:"0.85"`
	// CommitWorkers is the number of row-processing goroutines per commit.
	CommitWorkers int `env:"IMPORT_COMMIT_WORKERS" envDefault:"4"`
}

func (i *ImportOptions) Validate() error {
	if i.PreviewRows <= 0 {
		return fmt.Errorf("IMPORT_PREVIEW_ROWS must be positive, got %d", i.PreviewRows)
	}
	if i.ErrorSummaryTop <= 0 {
		return fmt.Errorf("IMPORT_ERROR_SUMMARY_TOP must be positive, got %d", i.ErrorSummaryTop)
	}
	if i.FuzzyThreshold <= 0 || i.FuzzyThreshold > 1 {
		return fmt.Errorf("IMPORT_FUZZY_THRESHOLD must be in (0, 1], got %v", i.FuzzyThreshold)
	}
	if i.CommitWorkers <= 0 {
		return fmt.Errorf("IMPORT_COMMIT_WORKERS must be positive, got %d", i.CommitWorkers)
	}
	return nil
}

type Configuration struct {
	Database   DatabaseOptions
	Prometheus PrometheusOptions
	Import     ImportOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	UploadsPath      string `env:"UPLOADS_PATH" envDefault:"uploads"`
	MaxUploadSize    int64  `env:"MAX_UPLOAD_SIZE" envDefault:"33554432"`
	MaxUploadMemory  int64  `env:"MAX_UPLOAD_MEMORY" envDefault:"33554432"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/app.log"`
	PageSize         int    `env:"PAGE_SIZE" envDefault:"25"`
	MaxPageSize      int    `env:"MAX_PAGE_SIZE" envDefault:"100"`
	// The server looks for this header in the request; if absent it
	// generates a random uuidv4.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	RealIPHeader    string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}

	if err := c.Import.Validate(); err != nil {
		return fmt.Errorf("import configuration error: %w", err)
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}

	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
