package feed

import (
	"time"
)

// Input types

// Paper is one record of the source list. On the wire it is a 5-element
// array: [date, link, title, [authors...], abstract].
type Paper struct {
	Date     string // YYYY-MM-DD, last updated, UTC midnight
	Link     string
	Title    string
	Authors  []string
	Abstract string
}

// Feed document types

type Channel struct {
	Title         string
	Link          string
	Description   string
	Language      string
	LastBuildDate time.Time
	Generator     string
	Author        string
}

type Item struct {
	Title       string
	Link        string
	Description string // abstract with newlines collapsed to spaces
	Author      string // authors joined by ","
	PublishedAt time.Time
}

// Document is one feed as handed to consumers. Every document yielded by the
// partitioner owns its Items; changing one never affects another.
type Document struct {
	Channel Channel
	Items   []Item
}

// Configuration types

type Config struct {
	Channel ChannelConfig  `yaml:"channel"`
	Top     []int          `yaml:"top"`  // rank cutoffs
	Days    map[int]string `yaml:"days"` // day threshold -> tag
}

type ChannelConfig struct {
	Title       string `yaml:"title"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Generator   string `yaml:"generator"`
	Author      string `yaml:"author"`
}

type Threshold struct {
	Days int
	Tag  string
}
