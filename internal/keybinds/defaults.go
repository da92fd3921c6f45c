package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerConnectionBindings(r)
	registerConnectFormBindings(r)
	registerErrorBindings(r)
	registerKeyListBindings(r)
	registerEditorBindings(r)
	registerCreateBindings(r)
	registerFilterBindings(r)
	registerQueryBindings(r)
	registerHelpBindings(r)
	registerConfirmBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuitForce)
}

// registerListNavigation sets up list movement for a context
func registerListNavigation(r *Registry, context Context) {
	r.RegisterMultiple(context, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(context, []string{"down", "j"}, ActionNavigateDown)
	r.Register(context, "pgup", ActionPageUp)
	r.Register(context, "pgdown", ActionPageDown)
	r.RegisterMultiple(context, []string{"gg", "home"}, ActionGoToTop)
	r.RegisterMultiple(context, []string{"G", "end"}, ActionGoToBottom)
}

func registerConnectionBindings(r *Registry) {
	registerListNavigation(r, ContextConnections)
	r.Register(ContextConnections, "q", ActionQuit)
	r.Register(ContextConnections, "?", ActionOpenHelp)
	r.Register(ContextConnections, "tab", ActionSwitchFocus)
	r.Register(ContextConnections, "enter", ActionSelectConnection)
	r.Register(ContextConnections, "n", ActionNewConnection)
	r.Register(ContextConnections, "D", ActionForgetConnection)
	r.Register(ContextConnections, "/", ActionFilterKeys)
}

func registerConnectFormBindings(r *Registry) {
	r.RegisterMultiple(ContextConnectForm, []string{"tab", "down"}, ActionNextField)
	r.RegisterMultiple(ContextConnectForm, []string{"shift+tab", "up"}, ActionPrevField)
	r.Register(ContextConnectForm, "ctrl+s", ActionToggleSave)
	r.Register(ContextConnectForm, "enter", ActionSubmit)
	r.Register(ContextConnectForm, "ctrl+n", ActionNewConnection)
	r.Register(ContextConnectForm, "ctrl+f", ActionForgetConnection)
	r.Register(ContextConnectForm, "esc", ActionCancel)
	r.Register(ContextConnectForm, "ctrl+v", ActionPaste)

	r.Register(ContextConnecting, "esc", ActionDisconnect)
	r.Register(ContextConnecting, "q", ActionQuit)
}

func registerErrorBindings(r *Registry) {
	r.RegisterMultiple(ContextError, []string{"r", "enter"}, ActionRetry)
	r.RegisterMultiple(ContextError, []string{"esc", "b"}, ActionGoBack)
	r.Register(ContextError, "q", ActionQuit)
}

func registerKeyListBindings(r *Registry) {
	registerListNavigation(r, ContextKeys)
	r.Register(ContextKeys, "q", ActionQuit)
	r.Register(ContextKeys, "?", ActionOpenHelp)
	r.Register(ContextKeys, "tab", ActionSwitchFocus)
	r.Register(ContextKeys, "enter", ActionSelectKey)
	r.Register(ContextKeys, "n", ActionNewKey)
	r.Register(ContextKeys, "r", ActionRefreshKeys)
	r.Register(ContextKeys, "X", ActionDisconnect)
	r.Register(ContextKeys, "D", ActionDelete)
	r.Register(ContextKeys, "c", ActionCopyValue)
	r.Register(ContextKeys, "J", ActionQueryValue)
	r.Register(ContextKeys, "/", ActionFilterKeys)
	r.Register(ContextKeys, "esc", ActionClearFilter)
	r.Register(ContextKeys, "x", ActionDismissNotice)
}

func registerEditorBindings(r *Registry) {
	r.Register(ContextEditor, "tab", ActionIndent)
	r.Register(ContextEditor, "shift+tab", ActionOutdent)
	r.Register(ContextEditor, "ctrl+s", ActionSave)
	r.Register(ContextEditor, "ctrl+d", ActionDelete)
	r.Register(ContextEditor, "ctrl+y", ActionCopyValue)
	r.Register(ContextEditor, "ctrl+v", ActionPaste)
	r.Register(ContextEditor, "ctrl+j", ActionQueryValue)
	r.Register(ContextEditor, "ctrl+x", ActionDismissNotice)
	r.Register(ContextEditor, "esc", ActionSwitchFocus)
}

func registerCreateBindings(r *Registry) {
	r.Register(ContextCreate, "tab", ActionNextField)
	r.Register(ContextCreate, "shift+tab", ActionPrevField)
	r.Register(ContextCreate, "ctrl+s", ActionSubmit)
	r.Register(ContextCreate, "ctrl+v", ActionPaste)
	r.Register(ContextCreate, "esc", ActionCancel)
}

func registerFilterBindings(r *Registry) {
	r.Register(ContextFilter, "enter", ActionSubmit)
	r.Register(ContextFilter, "esc", ActionCancel)
}

func registerQueryBindings(r *Registry) {
	r.Register(ContextQuery, "enter", ActionSubmit)
	r.Register(ContextQuery, "esc", ActionCancel)
	r.Register(ContextQuery, "ctrl+y", ActionCopyValue)
	r.RegisterMultiple(ContextQuery, []string{"pgup"}, ActionPageUp)
	r.RegisterMultiple(ContextQuery, []string{"pgdown"}, ActionPageDown)
	r.Register(ContextQuery, "ctrl+b", ActionSaveQuery)
	r.Register(ContextQuery, "up", ActionNavigateUp)
	r.Register(ContextQuery, "down", ActionNavigateDown)
}

func registerHelpBindings(r *Registry) {
	r.RegisterMultiple(ContextHelp, []string{"esc", "?", "q"}, ActionCancel)
	r.RegisterMultiple(ContextHelp, []string{"up", "k"}, ActionNavigateUp)
	r.RegisterMultiple(ContextHelp, []string{"down", "j"}, ActionNavigateDown)
}

func registerConfirmBindings(r *Registry) {
	r.RegisterMultiple(ContextConfirm, []string{"y", "Y"}, ActionConfirm)
	r.RegisterMultiple(ContextConfirm, []string{"n", "N", "esc", "q"}, ActionCancel)
}
