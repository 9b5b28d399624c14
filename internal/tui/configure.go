// Package tui is the interactive configuration wizard.
package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/muesli/termenv"

	"github.com/AndreOF/whisper-writer/internal/config"
)

type configSection string

const (
	sectionRecording      configSection = "recording"
	sectionModel          configSection = "model"
	sectionPostProcessing configSection = "post_processing"
	sectionMisc           configSection = "misc"
	sectionSaveExit       configSection = "save_exit"
	sectionDiscardExit    configSection = "discard_exit"
)

// RunConfiguration edits the configuration interactively and writes it on
// save. A missing config file starts from defaults.
func RunConfiguration() error {
	cfg, err := config.Load()
	if err != nil {
		if !errors.Is(err, config.ErrConfigNotFound) {
			return err
		}
		cfg = config.DefaultConfig()
	}

	for {
		clearScreen()

		section, err := selectSection(cfg)
		if err != nil {
			return err
		}

		switch section {
		case sectionSaveExit:
			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "Configuration invalid: %v\n", err)
				continue
			}
			return config.Save(cfg)

		case sectionDiscardExit:
			return nil

		case sectionRecording:
			if err := editRecording(cfg); err != nil {
				continue
			}

		case sectionModel:
			if err := editModel(cfg); err != nil {
				continue
			}

		case sectionPostProcessing:
			if err := editPostProcessing(cfg); err != nil {
				continue
			}

		case sectionMisc:
			if err := editMisc(cfg); err != nil {
				continue
			}
		}
	}
}

// sectionOptions labels each section with the current value so the menu
// doubles as a summary of the active configuration.
func sectionOptions(cfg *config.Config) []huh.Option[configSection] {
	backend := "local model"
	if cfg.Model.UseAPI {
		backend = "API"
	}

	return []huh.Option[configSection]{
		huh.NewOption(fmt.Sprintf("Recording (%s)", cfg.Recording.RecordingMode), sectionRecording),
		huh.NewOption(fmt.Sprintf("Transcription (%s)", backend), sectionModel),
		huh.NewOption("Post-processing", sectionPostProcessing),
		huh.NewOption("Miscellaneous", sectionMisc),
		huh.NewOption("Save & Exit", sectionSaveExit),
		huh.NewOption("Discard & Exit", sectionDiscardExit),
	}
}

func selectSection(cfg *config.Config) (configSection, error) {
	options := sectionOptions(cfg)

	var selected configSection
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[configSection]().
				Title("WhisperWriter Configuration").
				Description("↑/↓ navigate • enter select • esc cancel").
				Options(options...).
				Value(&selected),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return "", err
	}
	return selected, nil
}

func editRecording(cfg *config.Config) error {
	mode := cfg.Recording.RecordingMode
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[config.RecordingMode]().
				Title("Recording Mode").
				Description("How the hotkey controls recording").
				Options(
					huh.NewOption("Press to toggle", config.PressToToggle),
					huh.NewOption("Hold to record", config.HoldToRecord),
					huh.NewOption("Continuous", config.Continuous),
				).
				Value(&mode),
			huh.NewInput().
				Title("Sample Rate").
				Description("Capture sample rate in Hz").
				Value(&sampleRate).
				Validate(func(s string) error {
					n, err := strconv.Atoi(s)
					if err != nil || n <= 0 {
						return fmt.Errorf("must be a positive integer")
					}
					return nil
				}),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.RecordingMode = mode
	cfg.Recording.SampleRate, _ = strconv.Atoi(sampleRate)
	return nil
}

func editModel(cfg *config.Config) error {
	useAPI := cfg.Model.UseAPI

	pick := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Use API backend?").
				Description("No keeps transcription on the local model").
				Affirmative("API").
				Negative("Local").
				Value(&useAPI),
		),
	).WithTheme(getTheme())
	if err := pick.Run(); err != nil {
		return err
	}
	cfg.Model.UseAPI = useAPI

	if useAPI {
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("API Model").
					Description("e.g. whisper-1").
					Value(&cfg.Model.API.Model),
				huh.NewInput().
					Title("Base URL").
					Description("Empty for the default OpenAI endpoint").
					Value(&cfg.Model.API.BaseURL),
				huh.NewInput().
					Title("Language").
					Description("ISO-639-1 code, empty for auto-detect").
					Value(&cfg.Model.Common.Language),
			),
		).WithTheme(getTheme())
		return form.Run()
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Model").
				Description("Named model, e.g. base or small.en").
				Value(&cfg.Model.Local.Model),
			huh.NewInput().
				Title("Model Path").
				Description("Optional explicit model file path").
				Value(&cfg.Model.Local.ModelPath),
			huh.NewSelect[string]().
				Title("Device").
				Options(
					huh.NewOption("Auto", "auto"),
					huh.NewOption("CPU", "cpu"),
					huh.NewOption("CUDA", "cuda"),
				).
				Value(&cfg.Model.Local.Device),
			huh.NewConfirm().
				Title("Condition on previous text?").
				Value(&cfg.Model.Local.ConditionOnPreviousText),
			huh.NewConfirm().
				Title("Voice activity filter?").
				Value(&cfg.Model.Local.VADFilter),
			huh.NewInput().
				Title("Language").
				Description("ISO-639-1 code, empty for auto-detect").
				Value(&cfg.Model.Common.Language),
		),
	).WithTheme(getTheme())
	return form.Run()
}

func editPostProcessing(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Remove trailing period?").
				Value(&cfg.PostProcessing.RemoveTrailingPeriod),
			huh.NewConfirm().
				Title("Add trailing space?").
				Value(&cfg.PostProcessing.AddTrailingSpace),
			huh.NewConfirm().
				Title("Remove capitalization?").
				Value(&cfg.PostProcessing.RemoveCapitalization),
		),
	).WithTheme(getTheme())
	return form.Run()
}

func editMisc(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Hide status notifications?").
				Value(&cfg.Misc.HideStatusWindow),
			huh.NewConfirm().
				Title("Play a noise on completion?").
				Value(&cfg.Misc.NoiseOnCompletion),
		),
	).WithTheme(getTheme())
	return form.Run()
}

func clearScreen() {
	output := termenv.NewOutput(os.Stdout)
	output.ClearScreen()
}
