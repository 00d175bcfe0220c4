package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/advex-rss/app/feed"
)

// NewHandler serves the files the writer produces. tags lists the feeds the
// current partitions can produce, for the index page.
func NewHandler(writer *feed.Writer, scheduler StatusProvider, tags []string, version string) *Handler {
	return &Handler{
		writer:    writer,
		scheduler: scheduler,
		tags:      tags,
		version:   version,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	tag := strings.TrimSuffix(c.Param("tag"), ".xml")
	if !feed.ValidTag(tag) {
		c.Status(http.StatusBadRequest)
		return
	}

	path := h.writer.Path(tag)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Status(http.StatusNotFound)
			return
		}
		slog.Error("Failed to read feed file", "tag", tag, "path", path, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("X-Feed-Tag", tag)
	if info, err := os.Stat(path); err == nil {
		c.Header("Last-Modified", info.ModTime().UTC().Format(http.TimeFormat))
	}
	c.Header("Content-Length", strconv.Itoa(len(data)))

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", data)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   h.version,
	}

	status, ok := h.scheduler.LastRun()
	switch {
	case !ok:
		health["status"] = "pending"
	case status.Error != "":
		health["status"] = "error"
		health["last_run"] = status
	default:
		health["status"] = "ok"
		health["last_run"] = status
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetIndex(c *gin.Context) {
	feeds := make(map[string]string, len(h.tags))
	for _, tag := range h.tags {
		feeds[tag] = fmt.Sprintf("/feeds/%s", tag)
	}

	c.JSON(http.StatusOK, gin.H{
		"service":     "advex-rss",
		"version":     h.version,
		"description": "RSS feeds of adversarial example papers, partitioned by rank and recency",
		"feeds":       feeds,
		"health":      "/health",
	})
}
