// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Key components:
//
//   - TaskService: owner-checked task CRUD, filtered listing and recursive
//     subtask resolution
//   - TagService: shared tag catalog
//   - UserService: signup and credential checks
//
// Writes that touch more than one row run inside store.RunInTransaction so a
// failed request leaves no partial state behind. Services depend on the store
// interfaces only, never on a concrete database implementation.
package service
