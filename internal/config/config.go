package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"csv2json/internal/convert"
	"csv2json/internal/eol"
	"csv2json/internal/jsonout"
	"csv2json/internal/mapper"
)

type Config struct {
	// conversion defaults, overridable by flags or a profile
	Delimiter string
	EOL       string
	HasHeader bool
	Empty     string
	Mode      string
	KeepExtra bool

	// HTTP front end
	Addr    string
	MaxBody int64

	// history store; empty DBDriver disables it
	DBDriver       string
	MySQLHost      string
	MySQLPort      int
	MySQLUser      string
	MySQLPassword  string
	MySQLDB        string
	SQLitePath     string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load() // optional

	return &Config{
		Delimiter: getenv("CSV2JSON_DELIMITER", "auto"),
		EOL:       getenv("CSV2JSON_EOL", "default"),
		HasHeader: getenvBool("CSV2JSON_HEADER", true),
		Empty:     getenv("CSV2JSON_EMPTY", "empty"),
		Mode:      getenv("CSV2JSON_MODE", "pretty"),
		KeepExtra: getenvBool("CSV2JSON_KEEP_EXTRA", false),

		Addr:    getenv("CSV2JSON_ADDR", ":8080"),
		MaxBody: int64(getenvInt("CSV2JSON_MAX_BODY", 10<<20)),

		DBDriver:       strings.ToLower(getenv("DB_DRIVER", "")),
		MySQLHost:      getenv("MYSQL_HOST", "127.0.0.1"),
		MySQLPort:      getenvInt("MYSQL_PORT", 3306),
		MySQLUser:      getenv("MYSQL_USER", "root"),
		MySQLPassword:  getenv("MYSQL_PASSWORD", ""),
		MySQLDB:        getenv("MYSQL_DB", "csv2json"),
		SQLitePath:     getenv("SQLITE_PATH", "csv2json.db"),
		ConnectTimeout: time.Duration(getenvInt("DB_CONNECT_TIMEOUT", 5)) * time.Second,
		QueryTimeout:   time.Duration(getenvInt("DB_QUERY_TIMEOUT", 30)) * time.Second,
	}, nil
}

// ConvertOptions validates the conversion defaults.
func (c *Config) ConvertOptions() (convert.Options, error) {
	mode, err := eol.ParseMode(c.EOL)
	if err != nil {
		return convert.Options{}, fmt.Errorf("config: %w", err)
	}
	empty, err := mapper.ParseEmptyPolicy(c.Empty)
	if err != nil {
		return convert.Options{}, fmt.Errorf("config: %w", err)
	}
	out, err := jsonout.ParseMode(c.Mode)
	if err != nil {
		return convert.Options{}, fmt.Errorf("config: %w", err)
	}
	return convert.Options{
		Delimiter: c.Delimiter,
		EOL:       mode,
		HasHeader: c.HasHeader,
		Empty:     empty,
		Mode:      out,
		KeepExtra: c.KeepExtra,
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
