package internal

import (
	"github.com/schollz/progressbar/v3"
)

// UIManager creates the status indicators shown during a CLI run
type UIManager interface {
	NewSpinner(description string) ProgressBar
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Describe(description string)
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	verbose bool
}

func NewUIManager(verbose bool) UIManager {
	return &StandardUIManager{verbose: verbose}
}

// NewSpinner returns an indeterminate progress indicator. Verbose mode logs
// every step, so the spinner stays silent there to keep the output readable.
func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.verbose {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(-1)}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)
	return &VisibleProgressBar{bar: bar}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
	_ = v.bar.Add(1)
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Describe(description string) {
	// Do nothing for silent mode
}

func (s *SilentProgressBar) Finish() {
	_ = s.bar.Finish()
}
