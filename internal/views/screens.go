package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const cardWidth = 34

var (
	centerCardStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("205")).Padding(0, 1)
	sideCardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Faint(true).Padding(0, 1)
	badgeStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	pointsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	selectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
)

type CardData struct {
	Slot    string
	Badge   string
	Title   string
	Body    string
	Footer  string
	Points  string
	Scale   float64
	Opacity float64
	Reason  string
}

type FanData struct {
	Heading string
	// Cards are in paint order; Slot places them.
	Cards []CardData
	Input string
	Empty string
	Hint  string
}

func renderCard(c CardData) string {
	width := int(float64(cardWidth) * c.Scale)
	if width < 12 {
		width = 12
	}
	var b strings.Builder
	b.WriteString(badgeStyle.Render(c.Badge) + "  " + pointsStyle.Render(c.Points) + "\n\n")
	b.WriteString(c.Title + "\n")
	if c.Body != "" {
		b.WriteString("\n" + c.Body + "\n")
	}
	if c.Footer != "" {
		b.WriteString("\n" + mutedStyle.Render(c.Footer))
	}
	if c.Reason != "" {
		b.WriteString("\n" + mutedStyle.Render("("+c.Reason+")"))
	}
	style := sideCardStyle
	if c.Slot == "center" {
		style = centerCardStyle
	}
	return style.Width(width).Render(strings.TrimSpace(b.String()))
}

func RenderCardFan(data FanData) string {
	var b strings.Builder
	if data.Heading != "" {
		b.WriteString(data.Heading + "\n")
	}
	if len(data.Cards) == 0 {
		b.WriteString(mutedStyle.Render(data.Empty))
		return b.String()
	}
	var left, center, right string
	for _, c := range data.Cards {
		switch c.Slot {
		case "left":
			left = renderCard(c)
		case "right":
			right = renderCard(c)
		default:
			center = renderCard(c)
		}
	}
	row := make([]string, 0, 3)
	for _, col := range []string{left, center, right} {
		if col != "" {
			row = append(row, col)
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, row...))
	if data.Input != "" {
		b.WriteString("\n" + data.Input)
	}
	if data.Hint != "" {
		b.WriteString("\n" + mutedStyle.Render(data.Hint))
	}
	return b.String()
}

type ProofFormData struct {
	Badge     string
	Title     string
	Prompt    string
	InputView string
	Error     string
	Busy      string
}

func RenderProofForm(data ProofFormData) string {
	var b strings.Builder
	b.WriteString(badgeStyle.Render(data.Badge) + "\n")
	b.WriteString(data.Title + "\n\n")
	b.WriteString(data.Prompt + "\n")
	b.WriteString(data.InputView + "\n")
	if data.Error != "" {
		b.WriteString("\n" + errorStyle.Render(data.Error) + "\n")
	}
	if data.Busy != "" {
		b.WriteString("\n" + data.Busy + "\n")
	}
	b.WriteString(mutedStyle.Render("[ctrl+s] submit  [esc] cancel"))
	return b.String()
}

type PaywallData struct {
	Hard           bool
	CompletedToday int
	Quota          int
}

func RenderPaywall(data PaywallData) string {
	var b strings.Builder
	if data.Hard {
		b.WriteString(selectedStyle.Render("you've used your free moves for today") + "\n\n")
	} else {
		b.WriteString(selectedStyle.Render(fmt.Sprintf("%d/%d free moves done. you're on a roll!", data.CompletedToday, data.Quota)) + "\n\n")
	}
	b.WriteString("go Pro for unlimited moves every day.\n\n")
	b.WriteString("  /upgrade monthly <receipt>\n")
	b.WriteString("  /upgrade yearly <receipt>\n")
	b.WriteString("  /restore\n\n")
	b.WriteString(mutedStyle.Render("[r] restore  [/] command  [esc] maybe later"))
	return b.String()
}

type OptionData struct {
	Text        string
	Description string
}

type IntakeData struct {
	Step     int
	Steps    int
	Question string
	Options  []OptionData
	Cursor   int
}

func RenderIntake(data IntakeData) string {
	var b strings.Builder
	b.WriteString(mutedStyle.Render(fmt.Sprintf("step %d of %d", data.Step, data.Steps)) + "\n")
	b.WriteString(data.Question + "\n\n")
	for i, opt := range data.Options {
		line := "  " + opt.Text
		if i == data.Cursor {
			line = selectedStyle.Render("> " + opt.Text)
		}
		b.WriteString(line + "\n")
		if opt.Description != "" {
			b.WriteString("    " + mutedStyle.Render(opt.Description) + "\n")
		}
	}
	b.WriteString("\n" + mutedStyle.Render("[j/k] choose  [enter] next  [esc] back"))
	return b.String()
}

type ChallengeData struct {
	Title   string
	Sponsor string
	Bonus   int
}

type VisionData struct {
	Dream         string
	ProgressView  string
	Percentage    int
	Streak        int
	Freezes       int
	TotalMoves    int
	Milestone     string
	NextMilestone string
	Premium       bool
	Challenges    []ChallengeData
}

func RenderVision(data VisionData) string {
	var b strings.Builder
	dream := data.Dream
	if dream == "" {
		dream = "(no dream yet, try /dream <title>)"
	}
	b.WriteString("dream: " + dream + "\n")
	b.WriteString(fmt.Sprintf("vision board: %s %d%%\n", data.ProgressView, data.Percentage))
	b.WriteString(fmt.Sprintf("streak: %d 🔥  freezes: %d\n", data.Streak, data.Freezes))
	b.WriteString(fmt.Sprintf("moves completed: %d\n", data.TotalMoves))
	if data.Milestone != "" {
		b.WriteString("milestone: " + data.Milestone + "\n")
	}
	if data.NextMilestone != "" {
		b.WriteString(mutedStyle.Render("next: "+data.NextMilestone) + "\n")
	}
	if data.Premium {
		b.WriteString(badgeStyle.Render("Pro") + "\n")
	}
	if len(data.Challenges) > 0 {
		b.WriteString("\nsponsored challenges:\n")
		for _, c := range data.Challenges {
			b.WriteString(fmt.Sprintf("- %s (%s) +%d\n", c.Title, c.Sponsor, c.Bonus))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return "command: " + input
}
