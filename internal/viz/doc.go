// Package viz renders a running choreography in the terminal.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [NewInteractiveApp]: solution menu, run settings, then the live view
//   - [Model]: live view of one controller with trails and an energy chart
//   - [Canvas]: Braille-based pixel canvas with per-cell colour
//   - [Camera]: rotatable perspective projection for the trails
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Restart the current solution
//	N/P   - Next/previous solution
//	0-2/C - Follow a body or the center of mass
//	S     - Save the trails as SVG
//	T     - Cycle color themes
//	?     - Show help overlay
package viz
