/*
Package client provides a Go observer for the starhunt relay.

It speaks the same JSON envelope protocol as game-client plugins and is used
by the starhunt CLI (report, remove, watch, apply) and by integration tests.

	c, err := client.Dial(ctx, "ws://localhost:8080")
	if err != nil {
		return err
	}
	defer c.Close()

	// The relay always starts with a full snapshot
	snapshot, err := c.Receive(5 * time.Second)

	err = c.SendReports(types.Report{
		World:    302,
		Location: types.Location{X: 3210, Y: 3400},
		Tier:     6,
		Health:   types.Known(100),
	})

A Client is safe for one reader and any number of writers.
*/
package client
