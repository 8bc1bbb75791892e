// Package io writes skyrender's output files.
//
// # Overview
//
// Every file skyrender produces, shard cache entries as well as the final
// images, goes through [WriteFileAtomic]. Data is written to a temporary
// file next to the destination, synced, and renamed into place, so a
// concurrent reader or an interrupted run never observes a partial file:
//
//	err := io.WriteFileAtomic("cubemap-1024x1024.png", 0o644, func(w stdio.Writer) error {
//	    return png.Encode(w, img)
//	})
//
// The rename is the only synchronization the shard cache needs: workers
// write disjoint paths, and a path either does not exist yet or holds a
// complete entry.
//
// # JSON
//
// [WriteJSON] and [ExportJSON] serialize run reports with two-space
// indentation. [ExportJSON] is atomic like every other output.
package io
