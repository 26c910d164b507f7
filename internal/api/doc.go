// Package api translates HTTP requests into calls on the task, tag and user
// services. Handlers decode and validate payloads, take the caller's
// identity from the request context, and render results and errors as JSON.
// Error bodies are localized for the language chosen by the language
// middleware.
package api
