package config

import (
	"fmt"
	"strings"
)

func validate(c *Config) error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr cannot be empty")
	}
	if c.Engine.StopOutPercent <= 0 || c.Engine.StopOutPercent > 100 {
		return fmt.Errorf("engine.stop_out_percent must be in (0, 100], got %v", c.Engine.StopOutPercent)
	}
	if c.Engine.MarginCallPercent < 0 {
		return fmt.Errorf("engine.margin_call_percent must be >= 0")
	}
	if c.Engine.MarginCallPercent > 0 && c.Engine.MarginCallPercent >= c.Engine.StopOutPercent {
		return fmt.Errorf("engine.margin_call_percent (%v) must be below engine.stop_out_percent (%v)",
			c.Engine.MarginCallPercent, c.Engine.StopOutPercent)
	}
	if c.Engine.ToppingUpPercent < 0 {
		return fmt.Errorf("engine.topping_up_percent must be >= 0")
	}
	if c.Engine.QueueSize <= 0 {
		return fmt.Errorf("engine.queue_size must be positive")
	}
	if strings.TrimSpace(c.Archive.Path) == "" {
		return fmt.Errorf("archive.path cannot be empty")
	}
	return nil
}
