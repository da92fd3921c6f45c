/*
Package tui implements the terminal dashboard for s1dash.

# Architecture

The TUI follows the Bubble Tea Model-Update-View pattern:
  - model.go: Model struct, Update loop and syncing with the session machine
  - keys.go: keyboard routing for the dashboard, editor and new key form
  - connect_form.go: saved connections list and connect form
  - overlays.go: help, fuzzy filter and JMESPath query overlays
  - render.go: view rendering
  - buffer.go: the multi-line text buffer behind the editors

# Sessions

All connection and key state lives in a session.Machine. Key handlers
call a machine operation, which returns a session.Cmd; the Model runs
it as a tea.Cmd and feeds the result back through Machine.Apply.
Results the machine reports as stale are dropped, so the screen only
ever reflects the latest request.

The Model keeps UI-only state: focus, list cursors, the editor cursor and
selection, and overlays.
*/
package tui
