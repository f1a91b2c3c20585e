// Package protocol implements the command/response layer over a host
// channel.
//
// The Controller multiplexes everything riding a single channel: it sends
// fire-and-forget commands, correlates responses to in-flight requests,
// answers requests the host sends the other way, and forwards host push
// events to the application.
//
// Correlation is by a ULID carried in the envelope's "id" field and echoed
// by the host in its response. Hosts that cannot echo the field are still
// supported: a response without an "id" resolves the oldest in-flight
// request whose derived "<type>-response" name matches (first-match-wins,
// the naive protocol's behavior). A response carrying an unknown "id" is
// stale and resolves nothing.
package protocol
