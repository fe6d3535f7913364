// Package sse provides Server-Sent Events (SSE) infrastructure for
// real-time event delivery.
//
// It includes client connection management, event broadcasting to
// multiple subscribers, and a hub for managing event channels.
//
// # Architecture
//
//   - Hub: Central event router managing client subscriptions
//   - Broadcaster: Sends events to the clients whose id matches a pattern
//   - ServeSSE: streams a hub's events to one HTTP client
//
// # Usage
//
//	hub := sse.NewHub()
//	go hub.Run()
//	router.GET("/events", func(c *gin.Context) {
//	    sse.ServeSSE(hub, c.Writer, c.Request, c.Query("client"))
//	})
package sse
