package config

// RecordingMode selects how activation and deactivation events map to
// session start/stop. It is fixed for the lifetime of a run.
type RecordingMode string

const (
	PressToToggle RecordingMode = "press_to_toggle"
	HoldToRecord  RecordingMode = "hold_to_record"
	Continuous    RecordingMode = "continuous"
)

type Config struct {
	Recording      RecordingOptions      `toml:"recording_options"`
	Model          ModelOptions          `toml:"model_options"`
	PostProcessing PostProcessingOptions `toml:"post_processing"`
	Misc           MiscOptions           `toml:"misc"`
}

type RecordingOptions struct {
	RecordingMode RecordingMode `toml:"recording_mode"`
	SampleRate    int           `toml:"sample_rate"`
}

// ModelOptions selects exactly one transcription backend. UseAPI picks the
// remote backend; otherwise the local model is used.
type ModelOptions struct {
	UseAPI bool               `toml:"use_api"`
	Local  LocalModelOptions  `toml:"local"`
	API    APIModelOptions    `toml:"api"`
	Common CommonModelOptions `toml:"common"`
}

type LocalModelOptions struct {
	Model                   string `toml:"model"`
	ModelPath               string `toml:"model_path"`
	ComputeType             string `toml:"compute_type"`
	Device                  string `toml:"device"`
	ConditionOnPreviousText bool   `toml:"condition_on_previous_text"`
	VADFilter               bool   `toml:"vad_filter"`
}

type APIModelOptions struct {
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// CommonModelOptions are passed to both backends. An empty Language means
// auto-detect.
type CommonModelOptions struct {
	Language      string  `toml:"language"`
	InitialPrompt string  `toml:"initial_prompt"`
	Temperature   float64 `toml:"temperature"`
}

type PostProcessingOptions struct {
	RemoveTrailingPeriod bool `toml:"remove_trailing_period"`
	AddTrailingSpace     bool `toml:"add_trailing_space"`
	RemoveCapitalization bool `toml:"remove_capitalization"`
}

type MiscOptions struct {
	HideStatusWindow  bool `toml:"hide_status_window"`
	NoiseOnCompletion bool `toml:"noise_on_completion"`
}

// ModelIdentifier resolves the local model reference: an explicit path wins
// over a named model.
func (o LocalModelOptions) ModelIdentifier() string {
	if o.ModelPath != "" {
		return o.ModelPath
	}
	return o.Model
}
