package lightctl

import (
	"context"
	"time"
)

// Mode is a host output mode.
type Mode string

// Output modes understood by the host.
const (
	// ModeBlack blanks all fixtures.
	ModeBlack Mode = "black"
	// ModeManual holds the fixed color.
	ModeManual Mode = "manual"
	// ModeAuto lets the host run its own program.
	ModeAuto Mode = "auto"
	// ModeToggle alternates between the fixed and toggle colors.
	ModeToggle Mode = "toggle"
	// ModeStrobe strobes the fixed color.
	ModeStrobe Mode = "strobe"
)

// Command names of the host vocabulary. These are application payloads
// riding the generic protocol; the protocol itself is agnostic to them.
const (
	cmdSetColor       = "setColor"
	cmdSetToggleColor = "setToggleColor"
	cmdSetToggleSpeed = "setToggleSpeed"
	cmdSetStrobeSpeed = "setStrobeSpeed"
	cmdSetMode        = "setMode"
	cmdGetConfig      = "getConfig"
)

// SetColor sets the fixed color as 0xRRGGBB.
func (c *clientImpl) SetColor(ctx context.Context, color int) error {
	return c.Send(ctx, cmdSetColor, map[string]any{"color": color})
}

// SetToggleColor sets the secondary color used in toggle mode.
func (c *clientImpl) SetToggleColor(ctx context.Context, color int) error {
	return c.Send(ctx, cmdSetToggleColor, map[string]any{"color": color})
}

// SetToggleSpeed sets the toggle interval. The wire carries milliseconds.
func (c *clientImpl) SetToggleSpeed(ctx context.Context, speed time.Duration) error {
	return c.Send(ctx, cmdSetToggleSpeed, map[string]any{"speed": speed.Milliseconds()})
}

// SetStrobeSpeed sets the strobe interval. The wire carries milliseconds.
func (c *clientImpl) SetStrobeSpeed(ctx context.Context, speed time.Duration) error {
	return c.Send(ctx, cmdSetStrobeSpeed, map[string]any{"speed": speed.Milliseconds()})
}

// SetMode switches the host's output mode.
func (c *clientImpl) SetMode(ctx context.Context, mode Mode) error {
	return c.Send(ctx, cmdSetMode, map[string]any{"mode": string(mode)})
}

// GetConfig requests the host's current configuration (fixtures, colors,
// speeds) as a raw payload map.
func (c *clientImpl) GetConfig(ctx context.Context) (map[string]any, error) {
	return c.Request(ctx, cmdGetConfig, nil)
}
