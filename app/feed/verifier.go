package feed

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

var ErrVerification = errors.New("generated feed failed verification")

// Verifier parses rendered feeds back with gofeed before they are written.
type Verifier struct {
	gofeedParser *gofeed.Parser
}

func NewVerifier() *Verifier {
	return &Verifier{
		gofeedParser: gofeed.NewParser(),
	}
}

func (v *Verifier) Run(data []byte, doc *Document) error {
	parsed, err := v.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrVerification, err)
	}

	if parsed.FeedType != "rss" {
		return fmt.Errorf("%w: expected rss, got %s", ErrVerification, parsed.FeedType)
	}

	if strings.TrimSpace(parsed.Title) != strings.TrimSpace(doc.Channel.Title) {
		return fmt.Errorf("%w: channel title %q, expected %q", ErrVerification, parsed.Title, doc.Channel.Title)
	}

	if len(parsed.Items) != len(doc.Items) {
		return fmt.Errorf("%w: %d items parsed, %d rendered", ErrVerification, len(parsed.Items), len(doc.Items))
	}

	for i, item := range parsed.Items {
		if strings.TrimSpace(item.Link) != strings.TrimSpace(doc.Items[i].Link) {
			return fmt.Errorf("%w: item %d link %q, expected %q", ErrVerification, i+1, item.Link, doc.Items[i].Link)
		}
	}

	return nil
}
