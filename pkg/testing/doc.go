// Package testing provides test doubles for uikit hosts.
//
// # Render Target
//
// RenderTarget is an in-memory collection.RenderTarget. It records every
// registration, reload, and batch operation, and checks each batch against
// the data source the way a real sectioned view would:
//
//	func TestFeed(t *testing.T) {
//	    target := uikittest.NewRenderTarget(t)
//	    c := collection.New(sections)
//	    c.Attach(target)
//
//	    items.Set(next)
//	    target.Settle() // deliver batch completions
//
//	    if got := target.Shown(); ... {
//	    }
//	}
//
// Batch completions are held until Settle so tests can observe the
// in-flight state.
//
// # Scene Host
//
// Host is an in-memory scene.Host whose animated transitions finish when
// its FakeClock is advanced past their duration.
//
// # Snapshot Testing
//
// Capture and compare operation logs:
//
//	snapshot := target.CaptureSnapshot()
//	snapshot.MatchesFile(t, "testdata/feed.snapshot.json")
//
// Update snapshots with:
//
//	UIKIT_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import uikittest "github.com/go-drift/uikit/pkg/testing"
package testing
