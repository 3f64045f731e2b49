// Package cassette implements the record/replay decision for a named set of
// recorded HTTP interactions.
//
// A Cassette is loaded from a Persister, consulted for every outgoing
// request, and saved when its user is done with it:
//
//	c, err := cassette.Load(ctx, "github_api", cassette.WithPersister(p))
//	...
//	if ok, err := c.CanPlay(req); ok {
//		resp, err := c.Play(req)
//	} else if c.WriteProtected() {
//		return c.NoMatch(req)
//	} else {
//		// perform the call, then
//		err = c.Record(req, resp)
//	}
//	...
//	err = c.Close(ctx)
//
// The record mode decides what is allowed:
//
//	mode          loads  plays                   records
//	none          yes    matches                 never
//	all           no     never                   always
//	once          yes    if loaded from storage  only if nothing was stored
//	new_episodes  yes    if loaded from storage  always
//
// Interactions are searched in recording order and the first one that
// matches and has not been played wins. Played interactions are skipped
// unless playback repeats are allowed.
package cassette
