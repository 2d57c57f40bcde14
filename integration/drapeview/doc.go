// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package drapeview displays composited canvases in a gogpu window.
//
// A View owns a GPU texture mirroring a drape.Raster. Update the raster
// with SetCanvas after each Process call and draw it from the window's
// frame callback:
//
//	view := drapeview.MustNew(app.GPUContextProvider(), 1024, 1024)
//	res, _ := pipeline.Process(ctx, garment, swatch, cfg)
//	view.SetCanvas(res.Canvas)
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    view.RenderTo(dc.AsTextureDrawer())
//	})
//
// Creating a View also offers the window's GPU device to the compute
// compositor, so rendering and display share one device.
package drapeview
