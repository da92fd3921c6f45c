package tui

// UI Layout Constants
// These constants define spacing, margins, and dimensions for the TUI layout

const (
	// Modal Dimensions - Standard margins for modal dialogs
	ModalWidthMargin       = 6  // Standard horizontal margin (m.width - 6)
	ModalHeightMargin      = 3  // Standard vertical margin (m.height - 3)
	ModalWidthMarginNarrow = 10 // Narrow horizontal margin for focused modals (m.width - 10)

	// Panel layout
	SidebarMinWidth     = 40  // Minimum sidebar width on wide terminals
	SidebarWidthPercent = 40  // Sidebar share of the terminal width
	NarrowWidth         = 100 // Below this the sidebar takes half the width
	PanelBorderWidth    = 2   // Width consumed by a rounded border
	StatusBarHeight     = 1

	// Content Area Offsets
	ContentOffsetSidebar = 7  // m.height - 7 for list rows (title, filter, borders, status)
	ContentOffsetQuery   = 16 // m.height - 16 for the query result viewport
	EditorChromeLines    = 8  // Key header, action row and spacing around the editor
)

// keybindsHint names the keybinds file in the help viewer
const keybindsHint = "keybinds.json"
