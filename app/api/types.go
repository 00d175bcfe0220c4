package api

import (
	"github.com/lysyi3m/advex-rss/app/feed"
	"github.com/lysyi3m/advex-rss/app/tasks"
)

type Handler struct {
	writer    *feed.Writer
	scheduler StatusProvider
	tags      []string
	version   string
}

// StatusProvider reports the most recent generation run.
type StatusProvider interface {
	LastRun() (tasks.RunStatus, bool)
}
