package livecheck

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultLiveMarker is the page marker Twitch embeds in the structured data
// of a channel page while it is broadcasting.
const DefaultLiveMarker = "isLiveBroadcast"

// maxTagLength bounds the tag so a long page title does not wrap the table.
const maxTagLength = 80

// LiveMarkerClassifier returns a [Classifier] that reports [Live] when the
// content contains marker, and [Ambiguous] otherwise.
//
// For live pages the tag is taken from the first source that has one:
//  1. the description of the JSON-LD BroadcastEvent (the stream title)
//  2. the og:description meta tag
//  3. the page title
//
// Example:
//
//	classify := livecheck.LiveMarkerClassifier("isLiveBroadcast")
func LiveMarkerClassifier(marker string) Classifier {
	m := []byte(marker)
	return func(name string, content []byte) Outcome {
		if len(m) == 0 || !bytes.Contains(content, m) {
			return Outcome{Verdict: Ambiguous}
		}
		return Outcome{Verdict: Live, Tag: extractTag(content)}
	}
}

// NameMentionClassifier returns a [Classifier] that reports [Offline] when
// the content mentions the name (case-insensitive), and [Ambiguous]
// otherwise.
//
// A channel page always mentions its own login, so the mention means the
// page was served for the channel. Pages that do not, such as a partially
// rendered shell, are retried.
func NameMentionClassifier() Classifier {
	return func(name string, content []byte) Outcome {
		if name == "" || !bytes.Contains(bytes.ToLower(content), []byte(strings.ToLower(name))) {
			return Outcome{Verdict: Ambiguous}
		}
		return Outcome{Verdict: Offline}
	}
}

// FirstMatch returns a [Classifier] that tries multiple classifiers in
// order, returning the first outcome that is not [Ambiguous].
//
// If every classifier is ambiguous, FirstMatch returns [Ambiguous].
func FirstMatch(classifiers ...Classifier) Classifier {
	return func(name string, content []byte) Outcome {
		for _, c := range classifiers {
			if out := c(name, content); out.Verdict != Ambiguous {
				return out
			}
		}
		return Outcome{Verdict: Ambiguous}
	}
}

// DefaultClassifier is the [Classifier] used when none is configured.
//
// The live marker takes precedence: a live page also mentions the name.
var DefaultClassifier = FirstMatch(
	LiveMarkerClassifier(DefaultLiveMarker),
	NameMentionClassifier(),
)

// extractTag returns a short description of a live page, or "" if none is
// found.
func extractTag(content []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return ""
	}

	if tag := broadcastDescription(doc); tag != "" {
		return tag
	}
	if desc, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		if tag := cleanTag(desc); tag != "" {
			return tag
		}
	}
	return cleanTag(doc.Find("title").First().Text())
}

// broadcastDescription searches every JSON-LD block for a BroadcastEvent.
func broadcastDescription(doc *goquery.Document) string {
	var tag string
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data interface{}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return true
		}
		tag = cleanTag(findBroadcastDescription(data))
		return tag == ""
	})
	return tag
}

// findBroadcastDescription walks decoded JSON-LD. A video object published
// as a BroadcastEvent carries the stream title in its own description; a
// bare BroadcastEvent carries it directly.
func findBroadcastDescription(data interface{}) string {
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			if desc := findBroadcastDescription(item); desc != "" {
				return desc
			}
		}
	case map[string]interface{}:
		if pub, ok := v["publication"]; ok && hasBroadcastEvent(pub) {
			if desc, ok := v["description"].(string); ok && desc != "" {
				return desc
			}
		}
		if isType(v, "BroadcastEvent") {
			if desc, ok := v["description"].(string); ok && desc != "" {
				return desc
			}
		}
		if graph, ok := v["@graph"]; ok {
			return findBroadcastDescription(graph)
		}
	}
	return ""
}

func hasBroadcastEvent(data interface{}) bool {
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			if hasBroadcastEvent(item) {
				return true
			}
		}
	case map[string]interface{}:
		return isType(v, "BroadcastEvent")
	}
	return false
}

func isType(obj map[string]interface{}, typ string) bool {
	t, _ := obj["@type"].(string)
	return t == typ
}

// cleanTag collapses whitespace and truncates to maxTagLength runes.
func cleanTag(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxTagLength {
		s = strings.TrimSpace(string(r[:maxTagLength-1])) + "…"
	}
	return s
}
