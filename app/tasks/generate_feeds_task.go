package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/advex-rss/app/feed"
)

type WrittenFeed struct {
	Tag   string `json:"tag"`
	Path  string `json:"path"`
	Items int    `json:"items"`
}

// GenerateFeedsTask runs one fetch, partition, render, verify, write pass.
type GenerateFeedsTask struct {
	Task
	source      *feed.Source
	partitioner *feed.Partitioner
	generator   *feed.Generator
	verifier    *feed.Verifier
	writer      *feed.Writer
	now         func() time.Time

	GeneratedAt time.Time
	Feeds       []WrittenFeed
}

// NewGenerateFeedsTask builds a task; a nil verifier skips verification.
func NewGenerateFeedsTask(name string, source *feed.Source, partitioner *feed.Partitioner, generator *feed.Generator,
	verifier *feed.Verifier, writer *feed.Writer) *GenerateFeedsTask {
	return &GenerateFeedsTask{
		Task:        NewTask(TaskTypeGenerateFeeds, name),
		source:      source,
		partitioner: partitioner,
		generator:   generator,
		verifier:    verifier,
		writer:      writer,
		now:         time.Now,
	}
}

func (t *GenerateFeedsTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.GeneratedAt = t.now().UTC().Truncate(time.Second)
	t.Feeds = nil

	papers, err := t.source.Run(ctx)
	if err != nil {
		return err
	}

	partitions, err := t.partitioner.Run(papers, t.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to partition papers: %w", err)
	}

	for doc, tag := range partitions {
		if err := ctx.Err(); err != nil {
			return err
		}

		path, err := t.writeFeed(doc, tag)
		if err != nil {
			return err
		}

		t.Feeds = append(t.Feeds, WrittenFeed{Tag: tag, Path: path, Items: len(doc.Items)})
		slog.Debug("Feed written", "feed", t.Name, "tag", tag, "items", len(doc.Items), "path", path)
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"feed", t.Name,
		"duration", t.GetDuration(),
		"papers", len(papers),
		"feeds", len(t.Feeds))

	return nil
}

func (t *GenerateFeedsTask) writeFeed(doc *feed.Document, tag string) (string, error) {
	data, err := t.generator.Run(doc)
	if err != nil {
		return "", fmt.Errorf("failed to render feed %s: %w", tag, err)
	}

	if t.verifier != nil {
		if err := t.verifier.Run(data, doc); err != nil {
			return "", fmt.Errorf("feed %s: %w", tag, err)
		}
	}

	path, err := t.writer.Run(tag, data)
	if err != nil {
		return "", fmt.Errorf("failed to write feed %s: %w", tag, err)
	}

	return path, nil
}

func (t *GenerateFeedsTask) GetFeeds() []WrittenFeed {
	return t.Feeds
}
