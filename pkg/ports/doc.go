/*
Package ports defines the driven ports (interfaces) of the sorting engine.

These interfaces decouple the stepwise engine from its collaborators, allowing the
same controller to drive a terminal bar chart, an HTTP/SSE stream or an MCP client.

# Key Interfaces

  - Renderer: Receives one Frame per step (last call wins).
  - StatsSink: Receives the comparison/swap/write counters.
  - TimerSink: Receives the elapsed wall-clock time at a fixed tick.
  - FrameBus: Fans serialized frames out to subscribers (in-process or Redis).
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
