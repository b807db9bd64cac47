package ports

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Amund211/eventlight/internal/domain"
	e "github.com/Amund211/eventlight/internal/errors"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(raw) {
	case FormatText, FormatJSON, FormatYAML:
		return Format(raw), nil
	}
	return "", fmt.Errorf("unknown output format %q (text, json or yaml)", raw)
}

const displayDateLayout = "Jan 2, 2006"

// formatDate renders a YYYY-MM-DD date for display, falling back to the raw value
func formatDate(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format(displayDateLayout)
}

func renderHeader(w io.Writer, title string, fetching int) {
	marker := ""
	if fetching > 0 {
		marker = " [fetching...]"
	}
	fmt.Fprintf(w, "== %s ==%s\n", title, marker)
}

func renderSectionTitle(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

func renderErrorBlock(w io.Writer, title string, err error, fallback string) {
	fmt.Fprintf(w, "! %s\n  %s\n", title, e.UserMessage(err, fallback))
}

func renderEventList(w io.Writer, events []domain.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No events found.")
		return
	}
	for _, event := range events {
		fmt.Fprintf(w, "- %s (%s) @ %s [%s]\n", event.Title, formatDate(event.Date), event.Location, event.ID)
	}
}

func renderEventDetails(w io.Writer, event domain.Event, imageBaseURL string) {
	fmt.Fprintf(w, "%s\n", event.Title)
	fmt.Fprintf(w, "  id:       %s\n", event.ID)
	fmt.Fprintf(w, "  where:    %s\n", event.Location)
	fmt.Fprintf(w, "  when:     %s @ %s\n", formatDate(event.Date), event.Time)
	fmt.Fprintf(w, "  image:    %s\n", imageURL(imageBaseURL, event.Image))
	fmt.Fprintf(w, "\n%s\n", event.Description)
}

func renderEventForm(w io.Writer, input domain.EventInput) {
	fmt.Fprintf(w, "  title:       %s\n", input.Title)
	fmt.Fprintf(w, "  description: %s\n", input.Description)
	fmt.Fprintf(w, "  date:        %s\n", input.Date)
	fmt.Fprintf(w, "  time:        %s\n", input.Time)
	fmt.Fprintf(w, "  location:    %s\n", input.Location)
	fmt.Fprintf(w, "  image:       %s\n", input.Image)
}

func renderImages(w io.Writer, images []domain.Image, imageBaseURL string) {
	if len(images) == 0 {
		fmt.Fprintln(w, "No images available.")
		return
	}
	for _, image := range images {
		fmt.Fprintf(w, "- %s  %s\n", image.Caption, imageURL(imageBaseURL, image.Path))
	}
}

func imageURL(baseURL, path string) string {
	if baseURL == "" || path == "" {
		return path
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// renderData writes data in a machine readable format
func renderData(w io.Writer, format Format, data any) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(data)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return err
		}
		return encoder.Close()
	}
	return fmt.Errorf("format %q is not machine readable", format)
}
