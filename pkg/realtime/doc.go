// Package realtime holds the timing and fan-out plumbing shared by the page
// engines: an injectable Clock, a frame scheduler, and SSE broadcasters.
package realtime
