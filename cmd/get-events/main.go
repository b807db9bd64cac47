// Command get-events dumps the raw response of the events API, for debugging the response parsers
//
// Usage: get-events [event id | images] [search term]
package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/Amund211/eventlight/internal/config"
	"github.com/Amund211/eventlight/internal/constants"
)

func makeRequest(httpClient *http.Client, url string) ([]byte, int, error) {
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		log.Println(err)
		return []byte{}, -1, fmt.Errorf("Constructing request: %w", err)
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		log.Println(err)
		return []byte{}, -1, fmt.Errorf("Making request: %w", err)
	}

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Println(err)
		return []byte{}, -1, fmt.Errorf("ReadAll: %w", err)
	}

	return data, resp.StatusCode, nil
}

func main() {
	baseURL := os.Getenv("EVENTS_API_URL")
	if baseURL == "" {
		baseURL = config.DefaultEventsAPIURL
	}

	eventsURL, err := url.JoinPath(baseURL, "events")
	if err != nil {
		log.Fatalf("Invalid events API URL: %v", err)
	}

	if len(os.Args) >= 2 && os.Args[1] != "" {
		eventsURL, err = url.JoinPath(eventsURL, os.Args[1])
		if err != nil {
			log.Fatalf("Invalid event id: %v", err)
		}
	}

	if len(os.Args) >= 3 && os.Args[2] != "" {
		eventsURL = fmt.Sprintf("%s?search=%s", eventsURL, url.QueryEscape(os.Args[2]))
	}

	httpClient := &http.Client{}

	data, statusCode, err := makeRequest(httpClient, eventsURL)
	if err != nil {
		log.Fatalf("Failed making request to events API: %v", err)
	}

	if statusCode != 200 {
		log.Printf("Events API returned non-200 status code: %d - %s\n", statusCode, string(data))
	}

	fmt.Println(string(data))
	fmt.Println(statusCode)
}
