package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"dtp/internal/domain"
)

// SummaryWriter persists a summary after failures are marked resolved
type SummaryWriter interface {
	SaveSummary(summary *domain.RunSummary) error
}

// ErrorViewer displays test failures in an interactive TUI
type ErrorViewer struct {
	storage SummaryWriter
}

// NewErrorViewer creates a new ErrorViewer
func NewErrorViewer(st SummaryWriter) *ErrorViewer {
	return &ErrorViewer{storage: st}
}

// View displays test failures in an interactive TUI
func (ev *ErrorViewer) View(summary *domain.RunSummary) error {
	refs := summary.AllFailures()
	if len(refs) == 0 {
		if summary.Meta.HardFailures > 0 {
			color.Red("✗ %d environment(s) failed to report, no test failures to show", summary.Meta.HardFailures)
			return nil
		}
		color.Green("✓ No test failures found!")
		return nil
	}

	app := tview.NewApplication()

	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	for i, ref := range refs {
		list.AddItem(ev.listItemText(summary, ref, i), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(" Test Failures (%d total, %d unresolved) | Use ↑↓ to navigate, [yellow]R[white] to mark resolved, → to view details, ← to go back, Ctrl+C to exit ",
			len(refs), countUnresolved(summary, refs)))
	}
	updateHeader()

	updateDetails := func() {
		index := list.GetCurrentItem()
		if index < 0 || index >= len(refs) {
			return
		}
		failure, ok := summary.Failure(refs[index])
		if !ok {
			return
		}
		statsView.SetText(formatFailureStats(refs[index], *failure, index+1))
		detailsView.SetText(formatFailureDetails(*failure))
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				index := list.GetCurrentItem()
				if failure, ok := summary.Failure(refs[index]); ok {
					failure.Resolved = !failure.Resolved
					list.SetItemText(index, ev.listItemText(summary, refs[index], index), "")
					updateHeader()
					updateDetails()
					// A failed save only loses the resolved marker
					_ = ev.storage.SaveSummary(summary)
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func (ev *ErrorViewer) listItemText(summary *domain.RunSummary, ref domain.FailureRef, index int) string {
	failure, ok := summary.Failure(ref)
	if !ok {
		return ""
	}
	name := failure.Name
	if name == "" {
		name = fmt.Sprintf("Test %d", index+1)
	}
	label := ref.Environment.Label()
	if failure.Resolved {
		return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s: %s[white]", index+1, label, tview.Escape(name))
	}
	return fmt.Sprintf("[yellow]%d.[white] [cyan]%s:[white] %s", index+1, label, tview.Escape(name))
}

func countUnresolved(summary *domain.RunSummary, refs []domain.FailureRef) int {
	count := 0
	for _, ref := range refs {
		if failure, ok := summary.Failure(ref); ok && !failure.Resolved {
			count++
		}
	}
	return count
}

// formatFailureDetails formats a failure using tview color tags ([red], [cyan], etc.)
func formatFailureDetails(failure domain.FailureDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[red]✗ Test: %s[white]\n\n", tview.Escape(failure.Name))
	if failure.Message != "" {
		fmt.Fprintf(&b, "[yellow]Message:[white]\n%s\n\n", tview.Escape(failure.Message))
	}
	if failure.Source != "" {
		fmt.Fprintf(&b, "[yellow]Source:[white]\n%s\n\n", tview.Escape(failure.Source))
	}
	fmt.Fprintf(&b, "[yellow]Actual:[white]\n%s\n\n", tview.Escape(failure.Actual))
	fmt.Fprintf(&b, "[yellow]Expected:[white]\n%s\n", tview.Escape(failure.Expected))

	return b.String()
}

// formatFailureStats formats the header line above the details pane
func formatFailureStats(ref domain.FailureRef, failure domain.FailureDetail, number int) string {
	name := failure.Name
	if name == "" {
		name = fmt.Sprintf("Test %d", number)
	}
	return fmt.Sprintf("[cyan]environment:[white] [yellow]%s[white] (%s) :: [yellow]%s[white]\n",
		ref.Environment, ref.Environment.Label(), tview.Escape(name))
}
