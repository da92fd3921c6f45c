/*
Package types defines the data structures shared across s1dash.

# Connection

Connection is the persisted record for one key/value store:

	{
	  "id": "01J9Z8Q6ZB7V2Y3X4W5V6U7T8S",
	  "name": "staging",
	  "token": "s1-token",
	  "baseUrl": "https://s1.kognise.dev/"
	}

The ID is generated once when the connection is created and is never
reused. BaseURL is optional; Endpoint falls back to DefaultBaseURL.

# ConnectionForm

ConnectionForm mirrors the connect form: the three connection fields plus
the "save connection" toggle.

# KeyValue

KeyValue is the unit written by the export command.
*/
package types
