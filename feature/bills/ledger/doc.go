// Package ledger talks to the accounting system over its session-based
// qbXML protocol.
//
// Every exchange runs a full session: open connection, begin session,
// process one payload, end session, close connection. The RequestProcessor
// interface abstracts the transport; the bundled implementation bridges the
// protocol over HTTP to a remote connector.
//
// The gateway expands hierarchical bills into one parent record plus one
// record per expense line, with the line id taking precedence as the
// reconciliation key, and performs validated best-effort bill writes.
package ledger
