package views

import (
	"fmt"
	"strings"

	"github.com/AI-ML-Modelor/aa/internal/tui/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// OnboardingView collects the display name for the initial profile.
// It is shown once, when the session database has no profile row yet.
type OnboardingView struct {
	*tview.Flex
	theme    *ui.Theme
	text     *tview.TextView
	input    *tview.InputField
	onSubmit func(displayName string)
}

// NewOnboardingView creates a new onboarding view.
func NewOnboardingView(theme *ui.Theme) *OnboardingView {
	text := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	text.SetBackgroundColor(theme.BgColor)
	text.SetTextColor(theme.FgColor)
	_, _ = fmt.Fprint(text, "\n\nWelcome. Pick a display name to create your local profile.\nYour peer identity is generated on this device; nothing leaves it.")

	input := tview.NewInputField().
		SetLabel(" Display name: ").
		SetFieldWidth(40)
	input.SetBorder(true)
	input.SetBorderColor(theme.BorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(text, 0, 1, false).
		AddItem(input, 3, 0, true).
		AddItem(tview.NewBox().SetBackgroundColor(theme.BgColor), 0, 1, false)

	ov := &OnboardingView{
		Flex:  flex,
		theme: theme,
		text:  text,
		input: input,
	}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && ov.onSubmit != nil {
			name := strings.TrimSpace(input.GetText())
			if name != "" {
				ov.onSubmit(name)
			}
		}
	})

	return ov
}

// Name implements Component.
func (ov *OnboardingView) Name() string { return "Welcome" }

// Init implements Component.
func (ov *OnboardingView) Init() {}

// Start implements Component.
func (ov *OnboardingView) Start() {}

// Stop implements Component.
func (ov *OnboardingView) Stop() {}

// Hints implements Component.
func (ov *OnboardingView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Create profile"},
	}
}

// SetOnSubmit sets the callback invoked with the chosen display name.
func (ov *OnboardingView) SetOnSubmit(fn func(displayName string)) {
	ov.onSubmit = fn
}

// Input returns the name input field (for focus management).
func (ov *OnboardingView) Input() *tview.InputField {
	return ov.input
}
