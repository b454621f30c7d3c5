// Package client is a Go client for the workspace server REST API.
//
// Requests go through a rate limiter and a circuit breaker. Only transport
// failures and 5xx answers count against the breaker; domain errors come
// back as *APIError values that unwrap to the matching domain sentinel:
//
//	c := client.New("http://localhost:8000", client.Options{})
//	created, err := c.Create(ctx, "")
//	_, err = c.Activate(ctx, created.ID, "/README.md")
//	if errors.Is(err, workspace.ErrNotOpen) {
//		_, err = c.Select(ctx, created.ID, "/README.md")
//	}
package client
