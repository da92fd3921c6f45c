package keybinds

// Action represents a user action that can be triggered by a keybinding
type Action string

// Context represents the screen or panel in which keybindings are active
type Context string

const (
	ContextGlobal      Context = "global"       // Available everywhere
	ContextConnections Context = "connections"  // Saved connection list (disconnected)
	ContextConnectForm Context = "connect_form" // Connect form fields
	ContextConnecting  Context = "connecting"   // Waiting for a session to open
	ContextError       Context = "error"        // Connection error screen
	ContextKeys        Context = "keys"         // Key list (connected)
	ContextEditor      Context = "editor"       // Value editor
	ContextCreate      Context = "create"       // New key form
	ContextFilter      Context = "filter"       // Fuzzy filter input
	ContextQuery       Context = "query"        // JMESPath query over the value
	ContextHelp        Context = "help"         // Help viewer
	ContextConfirm     Context = "confirm"      // Confirmation dialogs
)

const (
	// Global actions
	ActionQuit      Action = "quit"       // Quit application
	ActionQuitForce Action = "quit_force" // Force quit (ctrl+c)
	ActionOpenHelp  Action = "open_help"  // Open help viewer

	// Navigation actions
	ActionNavigateUp   Action = "navigate_up"   // Move up one item
	ActionNavigateDown Action = "navigate_down" // Move down one item
	ActionPageUp       Action = "page_up"       // Move up one page
	ActionPageDown     Action = "page_down"     // Move down one page
	ActionGoToTop      Action = "go_to_top"     // Go to top
	ActionGoToBottom   Action = "go_to_bottom"  // Go to bottom
	ActionSwitchFocus  Action = "switch_focus"  // Switch focus between panels

	// Form actions
	ActionNextField  Action = "next_field"  // Focus the next form field
	ActionPrevField  Action = "prev_field"  // Focus the previous form field
	ActionToggleSave Action = "toggle_save" // Toggle "save connection"
	ActionSubmit     Action = "submit"      // Submit the focused form
	ActionCancel     Action = "cancel"      // Leave the form or dialog
	ActionConfirm    Action = "confirm"     // Confirm (y/Y)

	// Connection actions
	ActionSelectConnection Action = "select_connection" // Fill the form from a saved connection
	ActionNewConnection    Action = "new_connection"    // Clear the form
	ActionForgetConnection Action = "forget_connection" // Remove a saved connection
	ActionDisconnect       Action = "disconnect"        // Close the session
	ActionRetry            Action = "retry"             // Retry a failed connect
	ActionGoBack           Action = "go_back"           // Leave the error screen

	// Key actions
	ActionSelectKey   Action = "select_key"   // Load the highlighted key
	ActionNewKey      Action = "new_key"      // Open the new-key form
	ActionRefreshKeys Action = "refresh_keys" // Re-fetch the key listing
	ActionFilterKeys  Action = "filter_keys"  // Fuzzy filter the list
	ActionClearFilter Action = "clear_filter" // Drop the active filter

	// Editor actions
	ActionSave          Action = "save"           // Save the edit buffer
	ActionDelete        Action = "delete"         // Delete the selected key
	ActionIndent        Action = "indent"         // Indent at the cursor
	ActionOutdent       Action = "outdent"        // Outdent the current line
	ActionCopyValue     Action = "copy_value"     // Copy the value to the clipboard
	ActionPaste         Action = "paste"          // Paste from the clipboard
	ActionQueryValue    Action = "query_value"    // Open the JMESPath query view
	ActionSaveQuery     Action = "save_query"     // Bookmark the query expression
	ActionDismissNotice Action = "dismiss_notice" // Clear the inline error
)

// AllActions lists every action a config file may bind
var AllActions = []Action{
	ActionQuit, ActionQuitForce, ActionOpenHelp,
	ActionNavigateUp, ActionNavigateDown, ActionPageUp, ActionPageDown,
	ActionGoToTop, ActionGoToBottom, ActionSwitchFocus,
	ActionNextField, ActionPrevField, ActionToggleSave, ActionSubmit, ActionCancel, ActionConfirm,
	ActionSelectConnection, ActionNewConnection, ActionForgetConnection,
	ActionDisconnect, ActionRetry, ActionGoBack,
	ActionSelectKey, ActionNewKey, ActionRefreshKeys, ActionFilterKeys, ActionClearFilter,
	ActionSave, ActionDelete, ActionIndent, ActionOutdent,
	ActionCopyValue, ActionPaste, ActionQueryValue, ActionSaveQuery, ActionDismissNotice,
}

// AllContexts lists every context a config file may target
var AllContexts = []Context{
	ContextGlobal, ContextConnections, ContextConnectForm, ContextConnecting,
	ContextError, ContextKeys, ContextEditor, ContextCreate,
	ContextFilter, ContextQuery, ContextHelp, ContextConfirm,
}

// IsKnownAction reports whether a is a defined action
func IsKnownAction(a Action) bool {
	for _, known := range AllActions {
		if known == a {
			return true
		}
	}
	return false
}

// IsKnownContext reports whether c is a defined context
func IsKnownContext(c Context) bool {
	for _, known := range AllContexts {
		if known == c {
			return true
		}
	}
	return false
}
