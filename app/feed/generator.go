package feed

import (
	"bytes"
	"encoding/xml"
	"time"
)

// TimestampLayout is ISO-8601 at seconds precision with a numeric offset,
// e.g. 2024-01-01T00:00:00+00:00.
const TimestampLayout = "2006-01-02T15:04:05-07:00"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders doc as a pretty-printed RSS 2.0 document with 2-space indentation.
func (g *Generator) Run(doc *Document) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0">`)
	buf.WriteString("\n  <channel>\n")

	channel := doc.Channel
	g.writeElement(&buf, "title", channel.Title, 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", channel.Description, 4)
	g.writeElement(&buf, "language", channel.Language, 4)
	g.writeElement(&buf, "lastBuildDate", formatTimestamp(channel.LastBuildDate), 4)
	g.writeElement(&buf, "generator", channel.Generator, 4)

	buf.WriteString("    <author>\n")
	g.writeElement(&buf, "name", channel.Author, 6)
	buf.WriteString("    </author>\n")

	for _, item := range doc.Items {
		g.writeItem(&buf, item)
	}

	buf.WriteString("  </channel>\n</rss>\n")

	return buf.Bytes(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, item Item) {
	buf.WriteString("    <item>\n")
	g.writeElement(buf, "title", item.Title, 6)
	g.writeElement(buf, "link", item.Link, 6)
	g.writeElement(buf, "description", item.Description, 6)
	g.writeElement(buf, "author", item.Author, 6)
	g.writeElement(buf, "pubDate", formatTimestamp(item.PublishedAt), 6)
	buf.WriteString("    </item>\n")
}

// writeElement writes an empty value as a self-closing tag so every field is
// present in the output.
func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	if content == "" {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
