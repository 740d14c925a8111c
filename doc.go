// Package smalltalk runs the small talk workflow: independent branches
// (current weather, top tech news) fan out concurrently, each retrying
// transient task failures with exponential backoff and optionally falling
// back to a catch output, then join into a single merged document.
//
// The Service facade wires the task collaborators, the invoker and the
// orchestrator:
//
//	srv, _ := smalltalk.New(smalltalk.WithConfig(cfg))
//	result := srv.Run(ctx, map[string]interface{}{
//		"body": map[string]interface{}{"location": "Boston"},
//	})
//
// Workflow definitions are YAML documents loaded through the Runtime; an
// embedded definition reproduces the small talk state machine.
package smalltalk
