// Package storetest provides a conformance test suite for launch.Database
// implementations.
//
// Every backend (SQLite, memory) should pass these tests. The factory
// receives *testing.T so it can use t.TempDir() for file databases and
// t.Cleanup() for teardown.
//
//	func TestConformance(t *testing.T) {
//	    storetest.RunConformanceSuite(t, func(t *testing.T) launch.Database {
//	        return memory.New()
//	    })
//	}
package storetest
