package vehicle

import "fmt"

// Config holds the battery parameters shared by the fleet.
type Config struct {
	// DrainPerMove is the battery percentage consumed by one completed move.
	DrainPerMove float64 `json:"drain_per_move"`
	// ChargePerTick is the battery percentage gained per tick at a station.
	ChargePerTick float64 `json:"charge_per_tick"`
	// LowBatteryThreshold triggers the charging override when battery falls
	// below it.
	LowBatteryThreshold float64 `json:"low_battery_threshold"`
}

// SetDefaults applies the reference warehouse parameters.
func (c *Config) SetDefaults() {
	if c.DrainPerMove == 0 {
		c.DrainPerMove = 0.5
	}
	if c.ChargePerTick == 0 {
		c.ChargePerTick = 5.0
	}
	if c.LowBatteryThreshold == 0 {
		c.LowBatteryThreshold = 20.0
	}
}

// Validate checks that the rates are sane.
func (c Config) Validate() error {
	if c.DrainPerMove < 0 {
		return fmt.Errorf("drain_per_move must not be negative")
	}
	if c.ChargePerTick <= 0 {
		return fmt.Errorf("charge_per_tick must be positive")
	}
	if c.LowBatteryThreshold < 0 || c.LowBatteryThreshold > 100 {
		return fmt.Errorf("low_battery_threshold must be within [0,100]")
	}
	return nil
}
