package config

// DefaultConfig returns the configuration used when no file exists yet.
func DefaultConfig() *Config {
	return &Config{
		Recording: RecordingOptions{
			RecordingMode: PressToToggle,
			SampleRate:    16000,
		},
		Model: ModelOptions{
			UseAPI: false,
			Local: LocalModelOptions{
				Model:                   "base",
				ComputeType:             "default",
				Device:                  "auto",
				ConditionOnPreviousText: true,
				VADFilter:               false,
			},
			API: APIModelOptions{
				Model: "whisper-1",
			},
			Common: CommonModelOptions{
				Language:      "",
				InitialPrompt: "",
				Temperature:   0.0,
			},
		},
		PostProcessing: PostProcessingOptions{
			RemoveTrailingPeriod: false,
			AddTrailingSpace:     true,
			RemoveCapitalization: false,
		},
		Misc: MiscOptions{
			HideStatusWindow:  false,
			NoiseOnCompletion: false,
		},
	}
}
