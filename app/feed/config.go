package feed

import (
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var (
	tagPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	rankTagPattern = regexp.MustCompile(`^top[0-9]+$`)
)

// DefaultConfig returns the partitions and channel metadata used when no
// partitions file is given.
func DefaultConfig() *Config {
	return &Config{
		Channel: ChannelConfig{
			Title:       "Adversarial Example Papers",
			Link:        "https://nicholas.carlini.com/writing/2019/all-adversarial-example-papers.html",
			Description: "Adversarial example papers collected by Nicholas Carlini.",
			Language:    "en-us",
			Generator:   "advex-papers-rss",
			Author:      "Nicholas Carlini",
		},
		Top: []int{25, 50, 100, 200, 300},
		Days: map[int]string{
			7:   "weekly",
			31:  "monthly",
			91:  "quarterly",
			366: "yearly",
		},
	}
}

// LoadConfig reads a partitions file. Sections missing from the file keep
// their defaults; an empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		config := DefaultConfig()
		return config, validateConfig(config)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	config, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	slog.Debug("Partitions loaded", "file", path, "top", config.Top, "days", len(config.Days))
	return config, nil
}

func parseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	defaults := DefaultConfig()

	// nil means the key was absent; an explicit empty list or map disables
	// that kind of partition.
	if config.Top == nil {
		config.Top = defaults.Top
	}
	if config.Days == nil {
		config.Days = defaults.Days
	}

	channel := &config.Channel
	if channel.Title == "" {
		channel.Title = defaults.Channel.Title
	}
	if channel.Link == "" {
		channel.Link = defaults.Channel.Link
	}
	if channel.Description == "" {
		channel.Description = defaults.Channel.Description
	}
	if channel.Language == "" {
		channel.Language = defaults.Channel.Language
	}
	if channel.Generator == "" {
		channel.Generator = defaults.Channel.Generator
	}
	if channel.Author == "" {
		channel.Author = defaults.Channel.Author
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	seenRanks := make(map[int]bool, len(config.Top))
	for i, n := range config.Top {
		if n <= 0 {
			return fmt.Errorf("rank cutoff at index %d must be positive, got %d", i, n)
		}
		if seenRanks[n] {
			return fmt.Errorf("duplicate rank cutoff %d", n)
		}
		seenRanks[n] = true
	}

	seenTags := make(map[string]int, len(config.Days))
	for days, tag := range config.Days {
		if days <= 0 {
			return fmt.Errorf("day threshold %d must be positive", days)
		}
		if !ValidTag(tag) {
			return fmt.Errorf("invalid tag %q for day threshold %d", tag, days)
		}
		if tag == TagAll || rankTagPattern.MatchString(tag) {
			return fmt.Errorf("tag %q for day threshold %d is reserved", tag, days)
		}
		if other, ok := seenTags[tag]; ok {
			return fmt.Errorf("tag %q used by day thresholds %d and %d", tag, other, days)
		}
		seenTags[tag] = days
	}

	tag, err := language.Parse(config.Channel.Language)
	if err != nil {
		return fmt.Errorf("invalid channel language %q: %w", config.Channel.Language, err)
	}
	config.Channel.Language = strings.ToLower(tag.String())

	return nil
}

// ValidTag reports whether tag is usable in a feed file name.
func ValidTag(tag string) bool {
	return tagPattern.MatchString(tag)
}
