// Package wsclient exchanges messages with a websocket target. A
// Session bundles the connect/send/receive/close cycle a single load
// iteration performs.
package wsclient
