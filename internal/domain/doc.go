// Package domain contains the core business entities of the task tracker:
// users, hierarchical tasks and tags, together with the ordered validation
// rules a task payload must pass before it is persisted. It is independent
// of any specific infrastructure or delivery mechanism.
package domain
