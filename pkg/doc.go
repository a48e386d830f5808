// Package pkg holds the gridstudio libraries.
//
// # Overview
//
// Gridstudio arranges images on an N×N grid, lets each cell pan and zoom
// its image, and exports the result at a fixed 400 pixels per cell. The
// libraries split into three areas:
//
//  1. Engine: [grid] (session, cell store, resizing, geometry),
//     [transform] (screen and export affine transforms) and [compose]
//     (the export compositor)
//  2. Infrastructure: [imagesource] (loading and proxying images),
//     [cache], [store] (session persistence) and [observability]
//  3. Orchestration: [pipeline] (snapshot → render → PNG) and [project]
//     (YAML project files)
//
// # Architecture
//
//	editor interaction
//	         ↓
//	    [grid] Session mutation → screen transform for the preview
//	         ↓
//	    [grid] Snapshot
//	         ↓
//	    [pipeline] Runner → [compose] Render ([imagesource] loads in parallel)
//	         ↓
//	    PNG bytes
//
// # Quick Start
//
//	sess, _ := grid.NewSession(grid.DefaultConfig())
//	sess.SelectCell(4)
//	sess.SelectImage("https://images.example.com/cat.jpg")
//	sess.UpdateTransform(1.5, 20, 0)
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Export(ctx, sess.Snapshot(), pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(pipeline.ExportFilename(time.Now()), result.PNG, 0644)
//
// [grid]: github.com/matzehuels/gridstudio/pkg/grid
// [transform]: github.com/matzehuels/gridstudio/pkg/transform
// [compose]: github.com/matzehuels/gridstudio/pkg/compose
// [imagesource]: github.com/matzehuels/gridstudio/pkg/imagesource
// [cache]: github.com/matzehuels/gridstudio/pkg/cache
// [store]: github.com/matzehuels/gridstudio/pkg/store
// [observability]: github.com/matzehuels/gridstudio/pkg/observability
// [pipeline]: github.com/matzehuels/gridstudio/pkg/pipeline
// [project]: github.com/matzehuels/gridstudio/pkg/project
package pkg
