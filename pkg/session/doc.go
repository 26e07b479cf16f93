/*
Package session keeps the live sorting sessions of a server process.

Sessions are created on demand and addressed by ID. Control operations on one session are
serialized by a per-session mutex, optionally backed by a distributed lock so several
replicas can share one frame bus without interleaving commands.
*/
package session
