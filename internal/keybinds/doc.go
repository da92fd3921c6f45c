/*
Package keybinds maps keys to dashboard actions.

Bindings are grouped by context (the connection list, the connect form,
the key list, the value editor and so on). Match looks a key up in the
given context first and falls back to the global context.

Users override defaults in keybinds.json, which may contain comments:

	{
	  "version": "1",
	  // save with ctrl+w as well
	  "editor": { "save": "ctrl+s,ctrl+w" },
	  "keys":   { "refresh_keys": "R" }
	}

Configuring an action replaces its default keys in that context. ctrl+c
always force quits and cannot be rebound.
*/
package keybinds
