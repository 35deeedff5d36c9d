// Package viz draws a running cloth in the terminal.
//
// The live view is a Bubble Tea program. The simulator publishes vertex
// positions into a mesh buffer every step; the view copies them out and
// rasterises each constraint onto a Braille [Canvas].
//
//   - [Model]: the live view of one cloth
//   - [NewLauncher]: preset menu in front of the live view
//   - [Canvas]: Braille-based pixel canvas
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reset to the rest lattice
//	G     - Gust on the bottom row
//	T     - Cycle color themes
//	?     - Show help overlay
//	[]    - Scrub through recent history
//	Tab   - Select a parameter, Up/Down to tune it
package viz
