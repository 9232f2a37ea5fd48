// Package ws streams file operation events to connected clients.
//
// Every successful mutation (rename, delete, move, folder creation)
// publishes an event through the broadcaster; each WebSocket connection
// subscribes on upgrade and receives the stream as JSON text frames.
// Liveness is maintained with protocol pings from the server and an
// application-level ping the UI may send.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection established
//   - pong: Ping reply
//   - error: Unknown client message
//   - renamed, deleted, moved, folder_created: File events
//
// Example Usage:
//
//	handler := ws.NewHandler(broadcaster, metrics, logger)
//	router.GET("/stream", handler.HandleConnection)
package ws
