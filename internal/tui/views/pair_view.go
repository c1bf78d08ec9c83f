package views

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/AI-ML-Modelor/aa/internal/tui/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PairView shows the local user's pairing code as a scannable QR plus an
// input for pasting a peer's code.
type PairView struct {
	*tview.Flex
	theme  *ui.Theme
	code   *tview.TextView
	input  *tview.InputField
	onCode func(raw string)
}

// NewPairView creates a new pairing view.
func NewPairView(theme *ui.Theme) *PairView {
	code := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	code.SetBorder(true)
	code.SetBorderColor(theme.BorderColor)
	code.SetBackgroundColor(theme.BgColor)
	code.SetTextColor(theme.FgColor)
	code.SetTitle(" Your Pairing Code ")
	code.SetTitleColor(theme.TitleColor)

	input := tview.NewInputField().
		SetLabel(" Peer code: ").
		SetFieldWidth(0)
	input.SetBorder(true)
	input.SetBorderColor(theme.BorderColor)
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)
	input.SetTitle(" Add Contact ")
	input.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(code, 0, 1, false).
		AddItem(input, 3, 0, true)

	pv := &PairView{
		Flex:  flex,
		theme: theme,
		code:  code,
		input: input,
	}

	input.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter && pv.onCode != nil {
			raw := strings.TrimSpace(input.GetText())
			if raw != "" {
				pv.onCode(raw)
				input.SetText("")
			}
		}
	})

	return pv
}

// Name implements Component.
func (pv *PairView) Name() string { return "Pair" }

// Init implements Component.
func (pv *PairView) Init() {}

// Start implements Component.
func (pv *PairView) Start() {}

// Stop implements Component.
func (pv *PairView) Stop() {}

// Hints implements Component.
func (pv *PairView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Add peer"},
		{Key: "Esc", Description: "Back"},
	}
}

// SetOnCode sets the callback invoked with a pasted peer code.
func (pv *PairView) SetOnCode(fn func(raw string)) {
	pv.onCode = fn
}

// ShowCode renders the local pairing code as a QR block plus the raw
// string for copy-paste exchanges.
func (pv *PairView) ShowCode(content string) {
	pv.code.Clear()
	ascii := renderQR(content)
	_, _ = fmt.Fprintf(pv.code,
		"\n  Share this code with a contact:\n\n%s\n  %s\n", ascii, content)
}

// ShowError displays a pairing failure in place of the QR block.
func (pv *PairView) ShowError(msg string) {
	pv.code.Clear()
	_, _ = fmt.Fprintf(pv.code, "\n\n[red]%s[-]", tview.Escape(msg))
}

// Input returns the peer code input field (for focus management).
func (pv *PairView) Input() *tview.InputField {
	return pv.input
}

// renderQR converts a string to a compact ASCII QR code using Unicode
// half-block characters. Two bitmap rows become one terminal line.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "  (QR generation failed: " + err.Error() + ")"
	}
	qr.DisableBorder = false

	bitmap := qr.Bitmap()
	rows := len(bitmap)
	cols := 0
	if rows > 0 {
		cols = len(bitmap[0])
	}

	var sb strings.Builder

	// Each output line encodes two bitmap rows using half-block characters.
	// This halves the vertical size of the rendered code.
	for y := 0; y < rows; y += 2 {
		sb.WriteString("  ")
		for x := 0; x < cols; x++ {
			top := bitmap[y][x] // true = black module
			bot := false
			if y+1 < rows {
				bot = bitmap[y+1][x]
			}
			switch {
			case top && bot:
				sb.WriteRune('\u2588') // █
			case top && !bot:
				sb.WriteRune('\u2580') // ▀
			case !top && bot:
				sb.WriteRune('\u2584') // ▄
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}

	return sb.String()
}
