// Standalone mock channel site for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/livecheck check -c example/livecheck.yaml example/streamer_list.txt
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"
)

// live channels and their stream titles; every other name listed in
// offline is offline, and unknown names get an empty page.
var (
	live = map[string]string{
		"alice": "Any% world record attempts",
		"carol": "Late night ranked",
	}
	offline = map[string]bool{
		"bob":  true,
		"dave": true,
	}
)

func main() {
	fmt.Println("Mock channel site starting on :9999")
	fmt.Println("Live: alice, carol  Offline: bob, dave  Anything else is never found")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(r.URL.Path, "/")

		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch {
		case live[name] != "":
			fmt.Fprintf(w, `<html><head><title>%s - Twitch</title>
<script type="application/ld+json">{"@type":"BroadcastEvent","isLiveBroadcast":true,"description":%q}</script>
</head><body></body></html>`, name, live[name])
		case offline[name]:
			fmt.Fprintf(w, `<html><head><title>%s - Twitch</title></head><body></body></html>`, name)
		default:
			fmt.Fprint(w, `<html><head><title>Twitch</title></head><body></body></html>`)
		}
		slog.Info("served", "name", name)
	})

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
