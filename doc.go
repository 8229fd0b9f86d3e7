// Package tcp sends a single payload over a fresh TCP connection, with
// the connect phase bounded by a timeout.
//
// The building blocks are exposed as well:
//
//	IsIPv4, IsIPv6, NetworkFamily  classify textual addresses
//	ResolveFirst                   turns a hostname into its first usable address
//	Open, Handle                   raw socket primitives (POSIX only)
//	ConnectWithTimeout             non-blocking connect, poll, SO_ERROR
//	SendOnce                       connect, send, close
//
// A one-shot send never retries, never reuses a socket and never reads a
// reply. Timeouts and refusals are reported alike as *ErrConnect, short
// writes as *ErrShortWrite.
//
// Sender composes resolution and SendOnce for callers holding hostnames.
//
// Nothing in this package logs unless a Sender is given a logger.
package tcp
