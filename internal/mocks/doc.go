// Package mocks provides centralized mock implementations for testing.
//
// The HTTP handler and middleware tests use these in place of the service
// layer and the JWT service.
//
// Every mock is a struct of function fields, one per interface method. A
// method whose field is left nil returns an error (or, for MockJWTService,
// the static values set on the struct), so a test only wires what it uses.
//
// Usage:
//
// Import the mocks package in your test file and create the required mock:
//
//	import "github.com/phrazzld/tasktracker/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    tasks := &mocks.MockTaskService{
//	        GetFn: func(ctx context.Context, callerID, taskID uuid.UUID) (*domain.Task, error) {
//	            return nil, store.ErrTaskNotFound
//	        },
//	    }
//
//	    // Use the mock in your test...
//	}
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
//  4. Update existing tests to use the centralized mock implementation
package mocks
