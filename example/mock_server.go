package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

// mockChannel describes how the mock site answers for one name.
type mockChannel struct {
	live  bool
	title string

	// shellPages is how many empty pages are served before the real one.
	shellPages int
}

var mockChannels = map[string]*mockChannel{
	"alice": {live: true, title: "Any% world record attempts"},
	"bob":   {},
	"carol": {live: true, title: "Late night ranked", shellPages: 2},
	"dave":  {shellPages: 1},
	"erin":  {shellPages: 100},
}

// StartMockChannelSite runs a mock channel site on addr. Live channels embed
// the live marker and a JSON-LD BroadcastEvent; some channels first serve
// empty pages so they are retried. Unknown names always get an empty page.
// Call this in a goroutine before creating the Checker.
func StartMockChannelSite(addr string) {
	var (
		served = make(map[string]int)
		mu     sync.Mutex
	)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		name := strings.Trim(r.URL.Path, "/")

		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		mu.Lock()
		served[name]++
		n := served[name]
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		ch, ok := mockChannels[name]
		if !ok || n <= ch.shellPages {
			slog.Info("serving empty page", "name", name, "request", n)
			fmt.Fprint(w, `<html><head><title>Twitch</title></head><body></body></html>`)
			return
		}
		fmt.Fprint(w, channelPage(name, ch))
	})

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}

func channelPage(name string, ch *mockChannel) string {
	if !ch.live {
		return fmt.Sprintf(`<html><head><title>%s - Twitch</title></head><body></body></html>`, name)
	}
	return fmt.Sprintf(`<html><head><title>%s - Twitch</title>
<script type="application/ld+json">[{"@type":"VideoObject","description":%q,"publication":{"@type":"BroadcastEvent","isLiveBroadcast":true}}]</script>
</head><body></body></html>`, name, ch.title)
}
