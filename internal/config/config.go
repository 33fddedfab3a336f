package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"vidfetch/internal/dirs"
)

// EnvPrefix namespaces environment variables: VIDFETCH_API_URL etc.
const EnvPrefix = "VIDFETCH"

// Keys and defaults.
const (
	KeyAPIURL          = "api_url"
	KeyOutDir          = "out_dir"
	KeyTimeout         = "timeout"
	KeyDownloadTimeout = "download_timeout"
	KeyOpener          = "opener"
	KeyVerbose         = "verbose"
	KeyNoUI            = "no_ui"

	DefaultAPIURL          = "http://localhost:5000"
	DefaultTimeout         = 30 * time.Second
	DefaultDownloadTimeout = 30 * time.Minute
)

// flagKeys maps viper keys to the cobra flag names bound to them.
var flagKeys = map[string]string{
	KeyAPIURL:          "api-url",
	KeyOutDir:          "out-dir",
	KeyTimeout:         "timeout",
	KeyDownloadTimeout: "download-timeout",
	KeyOpener:          "opener",
	KeyVerbose:         "verbose",
	KeyNoUI:            "no-ui",
}

// Config is the resolved configuration. It is a plain value; nothing reads
// viper after Load returns.
type Config struct {
	APIURL          string
	OutDir          string
	Timeout         time.Duration
	DownloadTimeout time.Duration
	Opener          string
	Verbose         bool
	NoUI            bool

	// ConfigFile is the file that was read, if any.
	ConfigFile string
}

// AddFlags registers the persistent flags Load binds.
func AddFlags(fs *pflag.FlagSet) {
	fs.String("api-url", DefaultAPIURL, "Backend base URL")
	fs.StringP("out-dir", "o", ".", "Directory playlist archives are saved to")
	fs.Duration("timeout", DefaultTimeout, "Timeout for video info lookups")
	fs.Duration("download-timeout", DefaultDownloadTimeout, "Timeout for playlist archive downloads")
	fs.String("opener", "", "Program used to open download URLs (default: platform opener)")
	fs.BoolP("verbose", "v", false, "Debug logging")
	fs.Bool("no-ui", false, "Disable TUI; use plain textual output")
	fs.String("config", "", "Config file (default: <config dir>/config.yaml)")
}

// Load resolves configuration for cmd. Precedence, highest first: flags set
// on the command line, environment, .env files, config file, defaults.
func Load(cmd *cobra.Command) (Config, error) {
	var cfgDir string
	if d, err := dirs.ConfigDir(); err == nil {
		cfgDir = d
	}
	envFiles := []string{".env"}
	if cfgDir != "" {
		envFiles = append(envFiles, filepath.Join(cfgDir, ".env"))
	}
	return load(cmd.Flags(), cfgDir, envFiles)
}

func load(fs *pflag.FlagSet, cfgDir string, envFiles []string) (Config, error) {
	v := viper.New()
	v.SetDefault(KeyAPIURL, DefaultAPIURL)
	v.SetDefault(KeyOutDir, ".")
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyDownloadTimeout, DefaultDownloadTimeout)
	v.SetDefault(KeyOpener, "")
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyNoUI, false)

	explicit := ""
	if f := fs.Lookup("config"); f != nil {
		explicit = f.Value.String()
	}
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else if cfgDir != "" {
		v.AddConfigPath(cfgDir)
		v.SetConfigName("config") // config.{yaml|yml|json|toml}
	}
	if explicit != "" || cfgDir != "" {
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if explicit != "" || !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := loadDotEnv(envFiles); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}

	cfg := Config{
		APIURL:          strings.TrimSpace(v.GetString(KeyAPIURL)),
		OutDir:          v.GetString(KeyOutDir),
		Timeout:         v.GetDuration(KeyTimeout),
		DownloadTimeout: v.GetDuration(KeyDownloadTimeout),
		Opener:          strings.TrimSpace(v.GetString(KeyOpener)),
		Verbose:         v.GetBool(KeyVerbose),
		NoUI:            v.GetBool(KeyNoUI),
		ConfigFile:      v.ConfigFileUsed(),
	}
	return cfg.normalize()
}

// loadDotEnv exports variables from the given .env files. Files that do not
// exist are skipped and variables already in the environment win.
func loadDotEnv(paths []string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c Config) normalize() (Config, error) {
	if c.APIURL == "" {
		return Config{}, errors.New("api_url must not be empty")
	}
	if c.Timeout <= 0 {
		return Config{}, fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.DownloadTimeout <= 0 {
		return Config{}, fmt.Errorf("download_timeout must be positive, got %s", c.DownloadTimeout)
	}
	if c.OutDir == "" {
		c.OutDir = "."
	}
	out, err := dirs.ExpandHome(c.OutDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve out_dir: %w", err)
	}
	c.OutDir = filepath.Clean(out)
	return c, nil
}
