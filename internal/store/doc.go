/*
Package store is the client side of the remote key/value store.

# Interfaces

An Opener turns a credential and base URL into a Client. A Client lists,
reads, writes and deletes raw string values:

	client, err := opener.Open(ctx, conn.Credential, conn.Endpoint())
	keys, err := client.ListKeys(ctx)
	raw, err := client.ReadRaw(ctx, "settings")

# Backends

Dispatcher selects a backend from the base URL scheme:
  - http, https: S1 REST API, bearer token authentication
  - redis, rediss: Redis strings, credential is the password
  - sqlite, file: local SQLite file, credential names the bucket
  - mem: process memory, used by tests and demos

# Errors

Open fails with *ConnectionError. Session calls fail with *StoreError, or
with *NotFoundError when a key is absent (errors.Is(err, ErrNotFound)).

# Cancellation

Clients honour context cancellation, but the dashboard never cancels an
in-flight call; it discards late results instead.
*/
package store
