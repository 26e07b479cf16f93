/*
Package sortvis is a stepwise sorting animation engine.

It runs one of five comparison sorts (bubble, insertion, selection, merge, quick) over an
array of bar heights and exposes every comparison, swap and write as an observable step,
so a front end can draw the array after each one. A run can be paused between any two
steps, resumed exactly where it left off, sped up or slowed down while in flight, and
discarded with a hard reset.

# Concept

A Session owns one RunState. Algorithm drivers never touch the array directly: they
issue step primitives (Compare, Swap, Write) which update the counters and highlights,
emit a Frame to the render sink and then sleep for the delay derived from the speed.
Pausing closes a gate consulted before every primitive, so the driver goroutine simply
blocks until Resume. A hard reset cancels the driver, waits for it to unwind, and only
then builds a fresh state.

Render, stats and timer sinks are interfaces (see package ports), which keeps the engine
independent of the terminal renderer, the HTTP server-sent events stream and the MCP
tools shipped in this module.

# Usage

	s, err := sortvis.New(
		sortvis.WithAlgorithm("quick"),
		sortvis.WithSize(40),
		sortvis.WithSpeed(80),
		sortvis.WithRenderer(ports.RenderFunc(func(ctx context.Context, f domain.Frame) {
			fmt.Println(f.Values)
		})),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	final, err := s.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(final.Counters)
*/
package sortvis
