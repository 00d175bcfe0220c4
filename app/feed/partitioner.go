package feed

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"
)

const (
	TagAll     = "all"
	DateLayout = "2006-01-02"
)

var ErrInvalidDate = errors.New("invalid paper date")

// Partitioner turns an ordered paper list into one feed per satisfied
// partition boundary (rank cutoffs and day thresholds) plus a final "all" feed.
type Partitioner struct {
	channel    ChannelConfig
	cutoffs    map[int]bool
	thresholds []Threshold // ascending by Days
}

func NewPartitioner(config *Config) *Partitioner {
	cutoffs := make(map[int]bool, len(config.Top))
	for _, n := range config.Top {
		cutoffs[n] = true
	}

	return &Partitioner{
		channel:    config.Channel,
		cutoffs:    cutoffs,
		thresholds: config.Thresholds(),
	}
}

// Run converts every paper up front, so a malformed date fails before
// anything is yielded. The returned sequence yields (document, tag) pairs in
// boundary order and ends with TagAll.
func (p *Partitioner) Run(papers []Paper, generatedAt time.Time) (iter.Seq2[*Document, string], error) {
	generatedAt = generatedAt.UTC().Truncate(time.Second)

	items := make([]Item, 0, len(papers))
	for i, paper := range papers {
		item, err := newItem(paper)
		if err != nil {
			return nil, fmt.Errorf("paper %d: %w", i+1, err)
		}
		items = append(items, item)
	}

	channel := p.channel.Channel(generatedAt)

	return func(yield func(*Document, string) bool) {
		remaining := p.thresholds
		built := make([]Item, 0, len(items))

		for i, item := range items {
			built = append(built, item)
			rank := i + 1

			if p.cutoffs[rank] {
				if !yield(snapshot(channel, built), fmt.Sprintf("top%d", rank)) {
					return
				}
			}

			var fired []Threshold
			remaining, fired = splitThresholds(remaining, ageInDays(generatedAt, item.PublishedAt))
			for _, threshold := range fired {
				if !yield(snapshot(channel, built), threshold.Tag) {
					return
				}
			}
		}

		yield(snapshot(channel, built), TagAll)
	}, nil
}

// snapshot copies the items built so far, so a document handed to a consumer
// is independent of the builder and of every other yielded document.
func snapshot(channel Channel, items []Item) *Document {
	return &Document{
		Channel: channel,
		Items:   slices.Clone(items),
	}
}

// splitThresholds returns the thresholds still waiting and those reached at
// the given age, both in ascending order. The input slice is not modified.
func splitThresholds(thresholds []Threshold, age int) (remaining, fired []Threshold) {
	for _, threshold := range thresholds {
		if age >= threshold.Days {
			fired = append(fired, threshold)
		} else {
			remaining = append(remaining, threshold)
		}
	}
	return remaining, fired
}

// ageInDays floors toward negative infinity, so a paper dated after the
// generation time has a negative age.
func ageInDays(generatedAt, date time.Time) int {
	const day = 24 * time.Hour

	d := generatedAt.Sub(date)
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

func newItem(paper Paper) (Item, error) {
	publishedAt, err := time.Parse(DateLayout, paper.Date)
	if err != nil {
		return Item{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, paper.Date, err)
	}

	return Item{
		Title:       paper.Title,
		Link:        paper.Link,
		Description: strings.ReplaceAll(paper.Abstract, "\n", " "),
		Author:      strings.Join(paper.Authors, ","),
		PublishedAt: publishedAt,
	}, nil
}

// Thresholds returns the day thresholds sorted ascending by day count.
func (c *Config) Thresholds() []Threshold {
	thresholds := make([]Threshold, 0, len(c.Days))
	for days, tag := range c.Days {
		thresholds = append(thresholds, Threshold{Days: days, Tag: tag})
	}
	slices.SortFunc(thresholds, func(a, b Threshold) int {
		return a.Days - b.Days
	})
	return thresholds
}

// Tags lists every tag the config can produce: rank tags ascending, then day
// tags by ascending threshold, then TagAll.
func (c *Config) Tags() []string {
	ranks := slices.Clone(c.Top)
	slices.Sort(ranks)

	tags := make([]string, 0, len(ranks)+len(c.Days)+1)
	for _, n := range ranks {
		tags = append(tags, fmt.Sprintf("top%d", n))
	}
	for _, threshold := range c.Thresholds() {
		tags = append(tags, threshold.Tag)
	}
	return append(tags, TagAll)
}

// Channel returns the channel metadata for a feed built at buildDate.
func (c ChannelConfig) Channel(buildDate time.Time) Channel {
	return Channel{
		Title:         c.Title,
		Link:          c.Link,
		Description:   c.Description,
		Language:      c.Language,
		LastBuildDate: buildDate,
		Generator:     c.Generator,
		Author:        c.Author,
	}
}
