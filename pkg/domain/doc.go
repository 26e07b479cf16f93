/*
Package domain contains the core domain model of the sorting visualizer.

It defines the run state that drivers mutate, the frames handed to render sinks and
the lifecycle events emitted while a run progresses. This package is kept pure and
free of external dependencies like I/O or scheduling, following Hexagonal
Architecture principles.

# Key Entities

  - RunState: The mutable record of one session (values, status, highlights, counters).
  - Frame: An immutable snapshot of a RunState, handed to sinks and adapters.
  - Algorithm: The selectable sorting strategy (bubble, insertion, selection, merge, quick).
  - LifecycleHooks: Callbacks for run start/step/status/completion observability.
*/
package domain
