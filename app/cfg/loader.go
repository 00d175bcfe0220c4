package cfg

import (
	"cmp"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Source and output
	SourceURL      string `long:"source-url" env:"SOURCE_URL" default:"https://nicholas.carlini.com/writing/2019/advex_papers.json" description:"URL of the JSON paper list"`
	OutputDir      string `long:"output-dir" env:"OUTPUT_DIR" default:"." description:"Directory the feed files are written to"`
	FilePrefix     string `long:"file-prefix" env:"FILE_PREFIX" default:"advex_papers" description:"Feed file name prefix, files are named <prefix>_<tag>.xml"`
	PartitionsFile string `long:"partitions" env:"PARTITIONS_FILE" description:"Optional YAML file overriding rank cutoffs, day thresholds and channel metadata"`
	Timeout        int    `long:"timeout" env:"TIMEOUT" default:"30" description:"HTTP timeout in seconds for fetching the paper list"`
	NoVerify       bool   `long:"no-verify" env:"NO_VERIFY" description:"Skip re-parsing generated feeds before writing them"`

	// Serve mode
	Serve    bool   `long:"serve" env:"SERVE" description:"Keep running: regenerate on an interval and serve feeds over HTTP"`
	Port     string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve mode)"`
	Interval int    `long:"interval" env:"INTERVAL" default:"3600" description:"Regeneration interval in seconds (serve mode)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"advex-rss/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses the process arguments and environment. A nil config with a nil
// error means help was requested.
func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		SourceURL:      raw.SourceURL,
		OutputDir:      raw.OutputDir,
		FilePrefix:     raw.FilePrefix,
		PartitionsFile: raw.PartitionsFile,
		Timeout:        raw.Timeout,
		Verify:         !raw.NoVerify,
		Serve:          raw.Serve,
		Port:           raw.Port,
		Interval:       raw.Interval,
		UserAgent:      raw.UserAgent,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	if cfg.SourceURL == "" {
		return fmt.Errorf("source URL is required")
	}
	if cfg.FilePrefix == "" {
		return fmt.Errorf("file prefix is required")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if cfg.Serve && cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive in serve mode")
	}
	return nil
}
