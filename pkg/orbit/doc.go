// Package orbit provides a Go client for the Orbit chat inference server.
//
// The client exposes the server's HTTP API as services hanging off a single
// Client value:
//
//	client := orbit.NewClient("http://localhost:3000",
//		orbit.WithAPIKey("orbit_..."),
//		orbit.WithSessionID("session-123"),
//	)
//
//	for event, err := range client.Chat.ChatStream(ctx, &orbit.ChatRequest{
//		Messages: []orbit.Message{{Role: "user", Content: "hello"}},
//	}) {
//		if err != nil {
//			return err
//		}
//		if event.Type == orbit.EventTextDelta {
//			fmt.Print(event.Text)
//		}
//	}
//
// Streaming responses are delivered as iter.Seq2 sequences of typed events
// (text deltas, audio deltas, a terminal completion). The stream assembler
// survives partial network reads, malformed frames, and servers that close
// the connection without an explicit terminal marker; see ChatService.
//
// All requests carry a generated X-Request-ID header plus the configured
// X-API-Key and X-Session-ID headers when set.
package orbit
