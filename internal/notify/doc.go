// Package notify delivers update messages to connected dev clients.
//
// The Hub keeps a registry of connections and fans each message out to a
// snapshot of it. Transports register connections: the websocket handler for
// browsers and, optionally, a NATS sink for out-of-browser consumers.
package notify
