// Command wsclient connects to the notification stream and prints every event
// it receives. Useful for checking award and streak events by hand.
package main

import (
	"flag"
	"log"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

type message struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

func main() {
	addr := flag.String("url", "ws://localhost:8080/api/v1/ws", "notification endpoint")
	initData := flag.String("init-data", "", "telegram init data of the user to listen as")
	flag.Parse()

	if *initData == "" {
		log.Fatal("-init-data is required")
	}

	header := http.Header{}
	header.Add("Authorization", "Telegram "+*initData)

	u, err := url.Parse(*addr)
	if err != nil {
		log.Fatal("invalid url:", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), header)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer conn.Close()

	for {
		_, p, err := conn.ReadMessage()
		if err != nil {
			log.Println("read error:", err)
			return
		}

		var m message
		if err := json.Unmarshal(p, &m); err != nil {
			log.Printf("Received (raw):\n%s\n", p)
			continue
		}

		pretty, _ := json.MarshalIndent(m, "", "  ")
		log.Printf("Received %s:\n%s\n", m.Type, pretty)
	}
}
