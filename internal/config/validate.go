package config

import "fmt"

// Validate reports the first invalid option. A validation failure is fatal:
// the daemon refuses to start a session with a broken configuration.
func (c *Config) Validate() error {
	switch c.Recording.RecordingMode {
	case PressToToggle, HoldToRecord, Continuous:
	default:
		return fmt.Errorf("invalid recording_options.recording_mode: %q (must be press_to_toggle, hold_to_record or continuous)", c.Recording.RecordingMode)
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording_options.sample_rate: %d", c.Recording.SampleRate)
	}

	if c.Model.UseAPI {
		if c.Model.API.Model == "" {
			return fmt.Errorf("invalid model_options.api.model: empty (required when use_api is set)")
		}
	} else {
		if c.Model.Local.ModelIdentifier() == "" {
			return fmt.Errorf("invalid model_options.local: model or model_path required")
		}
	}

	if t := c.Model.Common.Temperature; t < 0 || t > 1 {
		return fmt.Errorf("invalid model_options.common.temperature: %v (must be within [0, 1])", t)
	}

	return nil
}
