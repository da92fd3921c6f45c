package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/studiowebux/s1dash/internal/keybinds"
	"github.com/studiowebux/s1dash/internal/session"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"} // Dark green / Bright green
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"} // Dark red / Bright red
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"} // Dark goldenrod / Yellow
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"} // Dark gray / Light gray
	colorCyan   = lipgloss.AdaptiveColor{Light: "#008b8b", Dark: "#00ffff"} // Dark cyan / Cyan
)

// Style definitions
var (
	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	styleSelected = lipgloss.NewStyle().
			Background(lipgloss.AdaptiveColor{Light: "#d3d3d3", Dark: "#3a3a3a"}).
			Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#ffffff"})

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorGreen)

	styleError = lipgloss.NewStyle().
			Foreground(colorRed)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorYellow)

	styleSubtle = lipgloss.NewStyle().
			Foreground(colorGray)

	styleMatch = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorYellow)
)

// layout returns the sidebar and main panel widths
func (m *Model) layout() (int, int) {
	sidebarWidth := max(SidebarMinWidth, m.width*SidebarWidthPercent/100)
	if m.width < NarrowWidth {
		sidebarWidth = m.width / 2
	}
	return sidebarWidth, m.width - sidebarWidth - PanelBorderWidth*2
}

// listHeight is the number of list rows that fit in the sidebar
func (m *Model) listHeight() int {
	return m.height - ContentOffsetSidebar
}

// updateViewports resizes the viewports after a window change
func (m *Model) updateViewports() {
	m.helpView.Width = m.width - ModalWidthMargin
	m.helpView.Height = m.height - ModalHeightMargin - 2
	m.queryView.Width = m.width - ModalWidthMargin
	m.queryView.Height = max(1, m.height-ContentOffsetQuery)
	m.filterInput.Width = max(10, m.width/3)
	m.queryInput.Width = m.width - ModalWidthMargin - 10
	m.createKey.Width = max(10, m.width/2)
}

// renderMain renders the sidebar + main panel layout for the connect
// screen and the dashboard
func (m *Model) renderMain() string {
	sidebarWidth, mainWidth := m.layout()
	panelHeight := m.height - StatusBarHeight - PanelBorderWidth

	var sidebar, main string
	if m.mode == ModeDashboard {
		sidebar = m.renderKeyList(sidebarWidth-2, panelHeight)
		main = m.renderKeyPanel(mainWidth-2, panelHeight)
	} else {
		sidebar = m.renderConnectionList(sidebarWidth-2, panelHeight)
		main = m.renderConnectForm(mainWidth - 2)
	}

	sidebarBorderColor := colorGray
	mainBorderColor := colorGray
	if m.focusedPanel == focusSidebar {
		sidebarBorderColor = colorGreen
	} else {
		mainBorderColor = colorGreen
	}

	sidebarBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(sidebarBorderColor).
		Width(sidebarWidth).
		Height(panelHeight).
		Render(sidebar)

	mainBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(mainBorderColor).
		Width(mainWidth).
		Height(panelHeight).
		Padding(0, 1).
		Render(main)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebarBox, mainBox),
		m.renderStatusBar(),
	)
}

// renderKeyList renders the key listing sidebar
func (m *Model) renderKeyList(width, height int) string {
	var b strings.Builder

	title := "Keys"
	if c, ok := m.machine.Connection(); ok {
		title = c.Name
	}
	b.WriteString(styleTitle.Render(truncate(title, width)))
	if _, ok := m.machine.State().(session.Refreshing); ok {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n")

	switch {
	case m.overlay == OverlayFilter:
		b.WriteString(m.filterInput.View() + "\n")
	case m.filterQuery != "":
		b.WriteString(styleWarning.Render("Filter: "+m.filterQuery) + "\n")
	default:
		b.WriteString("\n")
	}

	keys := m.visibleKeys()
	if len(keys) == 0 {
		if m.filterQuery != "" {
			b.WriteString(styleSubtle.Render("No matching keys"))
		} else {
			b.WriteString(styleSubtle.Render("No keys yet. Press n to create one."))
		}
		return b.String()
	}

	loaded := m.activeKey()
	start, end := window(len(keys), m.keyIndex, height-3)
	for i := start; i < end; i++ {
		match := keys[i]
		name := highlight(truncate(match.Key, width-2), match.Indexes)
		if match.Key == loaded {
			name = "● " + name
		} else {
			name = "  " + name
		}
		if i == m.keyIndex && m.focusedPanel == focusSidebar {
			name = styleSelected.Render(name)
		}
		b.WriteString(name + "\n")
	}
	if len(keys) > end-start {
		b.WriteString(styleSubtle.Render(fmt.Sprintf("%d/%d", m.keyIndex+1, len(keys))))
	}
	return b.String()
}

// activeKey is the key shown in the main panel, if any
func (m *Model) activeKey() string {
	switch ks := m.machine.KeyState().(type) {
	case session.KeyLoading:
		return ks.Key
	case session.KeyReady:
		return ks.Key
	case session.KeySaving:
		return ks.Key
	case session.KeyDeleting:
		return ks.Key
	}
	return ""
}

// renderKeyPanel renders the main panel for the key state
func (m *Model) renderKeyPanel(width, height int) string {
	var body string

	switch ks := m.machine.KeyState().(type) {
	case session.KeyEmpty:
		body = styleSubtle.Render("Select a key, or press n to create one.")
	case session.KeyLoading:
		body = fmt.Sprintf("%s Loading %s...", m.spinner.View(), ks.Key)
	case session.KeyDeleting:
		body = fmt.Sprintf("%s Deleting %s...", m.spinner.View(), ks.Key)
	case session.KeyReady:
		body = m.renderEditor(ks.Key, ks.Dirty, false, width, height)
	case session.KeySaving:
		body = m.renderEditor(ks.Key, ks.Dirty, true, width, height)
	case session.KeyComposing:
		body = m.renderCreateForm(false, width, height)
	case session.KeySubmitting:
		body = m.renderCreateForm(true, width, height)
	}

	if err := m.machine.Notice(); err != nil {
		body += "\n\n" + styleError.Render(wrapText(err.Error(), width)) +
			"\n" + styleSubtle.Render(m.keybinds.Describe(keybinds.ContextKeys, keybinds.ActionDismissNotice)+" dismiss")
	}
	return body
}

// renderEditor renders the value editor with its action row
func (m *Model) renderEditor(key string, dirty, saving bool, width, height int) string {
	var b strings.Builder

	header := styleTitle.Render(truncate(key, width-4))
	if dirty {
		header += styleWarning.Render(" *")
	}
	b.WriteString(header + "\n\n")

	b.WriteString(renderBuffer(&m.editor, m.focusedPanel == focusMain, height-EditorChromeLines) + "\n\n")

	save := "[" + m.keybinds.Describe(keybinds.ContextEditor, keybinds.ActionSave) + "] Save"
	switch {
	case saving:
		save = m.spinner.View() + " Saving..."
	case dirty:
		save = styleSuccess.Render(save)
	default:
		save = styleSubtle.Render(save)
	}
	del := styleError.Render("[" + m.keybinds.Describe(keybinds.ContextEditor, keybinds.ActionDelete) + "] Delete")
	b.WriteString(save + "  " + del)
	return b.String()
}

// renderCreateForm renders the new key form
func (m *Model) renderCreateForm(submitting bool, width, height int) string {
	var b strings.Builder
	b.WriteString(styleTitle.Render("New key") + "\n\n")
	b.WriteString(m.createKey.View() + "\n\n")

	label := "Value"
	if m.createField == 1 {
		label = styleSelected.Render(label)
	}
	b.WriteString(label + "\n")
	b.WriteString(renderBuffer(&m.createValue, m.createField == 1 && m.focusedPanel == focusMain, height-EditorChromeLines-3) + "\n\n")

	if submitting {
		b.WriteString(m.spinner.View() + " Creating...")
	} else {
		b.WriteString(styleSuccess.Render("[" + m.keybinds.Describe(keybinds.ContextCreate, keybinds.ActionSubmit) + "] Create"))
	}
	return b.String()
}

// renderBuffer draws a text buffer with its cursor and selection, scrolled
// so the cursor line is visible
func renderBuffer(b *buffer, focused bool, height int) string {
	var text string
	start, end := b.selection()
	switch {
	case !focused:
		text = b.text
	case start != end:
		text = b.text[:start] + styleSelected.Render(b.text[start:end]) + b.text[end:]
	default:
		text = b.text[:b.cursor] + "█" + b.text[b.cursor:]
	}

	lines := strings.Split(text, "\n")
	if height < 1 || len(lines) <= height {
		return text
	}
	line, _ := b.position()
	from, to := window(len(lines), line, height)
	return strings.Join(lines[from:to], "\n")
}

// renderConnecting renders the spinner shown while a session opens
func (m *Model) renderConnecting() string {
	name := ""
	if c, ok := m.machine.Connection(); ok {
		name = c.Name
	}
	content := fmt.Sprintf("%s Connecting to %s...\n\n%s",
		m.spinner.View(),
		styleTitle.Render(name),
		styleSubtle.Render("["+m.keybinds.Describe(keybinds.ContextConnecting, keybinds.ActionDisconnect)+"] Cancel"))
	return m.renderModal("Connecting", content, ModalWidthMarginNarrow)
}

// renderError renders the connect failure screen with Retry / Go back
func (m *Model) renderError() string {
	var conn, msg string
	retrying := false
	switch s := m.machine.State().(type) {
	case session.Failed:
		conn, msg = s.Connection.Name, s.Err.Error()
	case session.Retrying:
		conn, msg = s.Connection.Name, s.Err.Error()
		retrying = true
	}

	width := m.width - ModalWidthMarginNarrow - 4
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Could not connect to %s\n\n", styleTitle.Render(conn)))
	b.WriteString(styleError.Render(wrapText(msg, width)) + "\n\n")
	if retrying {
		b.WriteString(m.spinner.View() + " Retrying...")
	} else {
		b.WriteString(styleSuccess.Render("["+m.keybinds.Describe(keybinds.ContextError, keybinds.ActionRetry)+"] Retry") + "  ")
		b.WriteString(styleSubtle.Render("[" + m.keybinds.Describe(keybinds.ContextError, keybinds.ActionGoBack) + "] Go back"))
	}
	return m.renderModal("Connection failed", b.String(), ModalWidthMarginNarrow)
}

// renderHelp renders the help viewer
func (m *Model) renderHelp() string {
	footer := styleSubtle.Render("esc close | up/down scroll")
	return m.renderModal("Help", m.helpView.View()+"\n\n"+footer, ModalWidthMargin)
}

// renderQuery renders the JMESPath query view
func (m *Model) renderQuery() string {
	var b strings.Builder
	key, _, _ := m.loadedValue()
	b.WriteString(styleSubtle.Render(key) + "\n")
	b.WriteString(m.queryInput.View() + "\n\n")
	if m.queryError != "" {
		b.WriteString(styleError.Render(m.queryError) + "\n\n")
	}
	b.WriteString(m.queryView.View() + "\n\n")
	b.WriteString(styleSubtle.Render("enter run | ctrl+b save | up/down saved | ctrl+y copy | esc close"))
	return m.renderModal("Query", b.String(), ModalWidthMargin)
}

// renderConfirmForget renders the forget confirmation dialog
func (m *Model) renderConfirmForget() string {
	name := m.forgetID
	if c, ok := m.registry.Get(m.forgetID); ok {
		name = c.Name
	}
	content := fmt.Sprintf("Forget connection %s?\n\n%s",
		styleWarning.Render(name),
		styleSubtle.Render("y confirm | n cancel"))
	return m.renderModal("Forget connection", content, ModalWidthMarginNarrow*3)
}

// renderModal draws a bordered box centered on the screen
func (m *Model) renderModal(title, content string, margin int) string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Padding(1, 2).
		Width(max(20, m.width-margin)).
		Render(styleTitle.Render(title) + "\n\n" + content)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderStatusBar renders the status bar at the bottom
func (m *Model) renderStatusBar() string {
	left := "s1dash"
	if m.version != "" {
		left += " " + m.version
	}
	if c, ok := m.machine.Connection(); ok {
		left += " | " + c.Name
	}

	right := ""
	switch {
	case m.errorMsg != "":
		right = styleError.Render(truncate(m.errorMsg, m.width/2))
	case m.statusMsg != "":
		right = styleSuccess.Render(m.statusMsg)
	default:
		right = styleSubtle.Render("? for help | q to quit")
	}

	spacing := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if spacing < 1 {
		spacing = 1
	}
	return left + strings.Repeat(" ", spacing) + right
}

// window returns the [start, end) slice of n rows that keeps selected in view
func window(n, selected, height int) (int, int) {
	if height < 1 {
		height = 1
	}
	if n <= height {
		return 0, n
	}
	start := selected - height/2
	if start < 0 {
		start = 0
	}
	if start+height > n {
		start = n - height
	}
	return start, start + height
}

// truncate shortens s to width runes
func truncate(s string, width int) string {
	r := []rune(s)
	if width < 1 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}

// highlight marks the fuzzy-matched byte offsets
func highlight(s string, indexes []int) string {
	if len(indexes) == 0 {
		return s
	}
	matched := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		matched[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if matched[i] {
			b.WriteString(styleMatch.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// wrapText hard-wraps text at width
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		r := []rune(line)
		for len(r) > width {
			lines = append(lines, string(r[:width]))
			r = r[width:]
		}
		lines = append(lines, string(r))
	}
	return strings.Join(lines, "\n")
}
