package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// isWebURL reports whether the input is an HTTP/HTTPS URL.
func isWebURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// urlToPseudoPath turns a URL into the relative path its pseudo-file
// uses inside the stream. The .md extension routes the content to the
// Markdown analyzer.
func urlToPseudoPath(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return strings.TrimSuffix(raw, "/") + ".md"
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		path = "index"
	}
	name := u.Host + "/" + path
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	return name
}

// processWebURL fetches one page and converts it to a Markdown
// pseudo-file.
func processWebURL(raw string) (FileRecord, error) {
	visited := make(map[string]bool)
	results, err := processWebURLRecursive(raw, 0, 0, visited)
	if err != nil {
		return FileRecord{}, err
	}
	if len(results) == 0 {
		return FileRecord{}, fmt.Errorf("failed to process web URL %s (no content generated)", raw)
	}
	return results[0], nil
}

// processWebURLRecursive fetches a page, converts it to Markdown, then
// follows its links up to maxDepth. The visited set breaks cycles;
// fetch and conversion failures skip the page rather than aborting the
// whole traversal.
func processWebURLRecursive(startURL string, currentDepth, maxDepth int, visited map[string]bool) ([]FileRecord, error) {
	parsedURL, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid start URL %s: %w", startURL, err)
	}
	parsedURL.Fragment = ""
	cleanURL := parsedURL.String()

	if currentDepth > maxDepth || visited[cleanURL] {
		return nil, nil
	}
	visited[cleanURL] = true
	fmt.Fprintf(os.Stderr, "Fetching web URL (depth %d): %s\n", currentDepth, cleanURL)

	res, err := http.Get(cleanURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to fetch URL %s: %v\n", cleanURL, err)
		return nil, nil
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		fmt.Fprintf(os.Stderr, "Warning: failed to fetch URL %s: status code %d\n", cleanURL, res.StatusCode)
		return nil, nil
	}
	contentType := res.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		fmt.Fprintf(os.Stderr, "Skipping non-HTML content type (%s) for URL: %s\n", contentType, cleanURL)
		return nil, nil
	}

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to read response body from %s: %v\n", cleanURL, err)
		return nil, nil
	}

	converter := md.NewConverter("", true, nil)
	markdown, convErr := converter.ConvertString(string(bodyBytes))

	var records []FileRecord
	if convErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to convert HTML to Markdown for %s: %v\n", cleanURL, convErr)
	} else {
		records = append(records, FileRecord{
			Path:    urlToPseudoPath(cleanURL),
			Content: markdown,
		})
	}

	if currentDepth < maxDepth {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(bodyBytes)))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to parse HTML for link extraction from %s: %v\n", cleanURL, err)
			return records, nil
		}
		doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
			link, exists := s.Attr("href")
			if !exists || link == "" || strings.HasPrefix(link, "#") ||
				strings.HasPrefix(strings.ToLower(link), "mailto:") ||
				strings.HasPrefix(strings.ToLower(link), "javascript:") {
				return
			}
			resolvedURL, err := parsedURL.Parse(link)
			if err != nil {
				return
			}
			if resolvedURL.Scheme != "http" && resolvedURL.Scheme != "https" {
				return
			}
			linked, _ := processWebURLRecursive(resolvedURL.String(), currentDepth+1, maxDepth, visited)
			records = append(records, linked...)
		})
	}

	return records, nil
}
