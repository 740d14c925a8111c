// Package invoker calls task collaborators on behalf of branch runners. It
// resolves a service:method action, converts the input document to the
// method's typed input, enforces the per call timeout and classifies every
// failure as transient or permanent. It never retries.
package invoker
