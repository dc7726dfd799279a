// Package pkg holds the slidetype libraries.
//
// # Overview
//
// Slidetype turns a background image, a title, a body and a declarative
// style into a finished carousel slide. The packages are layered, leaves first:
//
//  1. [errors], [colors], [style] - coded errors, color parsing, the style model
//  2. [fonts], [typeset] - font resolution and the wrap/autofit solver
//  3. [raster], [composite] - the drawing surface and text compositing
//  4. [advisor] - brightness analysis and style suggestions
//  5. [engine] - one slide: decode, fit, composite, encode
//  6. [cache], [pipeline] - cached, concurrent carousel rendering
//  7. [config], [server] - TOML configuration and the HTTP surface
//
// # Data Flow
//
//	background bytes
//	       ↓
//	[raster] decode + normalize to the canvas size
//	       ↓
//	[typeset] per block: largest size whose wrapped lines fit the box
//	       ↓
//	[composite] shadow, stroke, fill
//	       ↓
//	PNG
//
// # Quick Start
//
//	p := fonts.NewProvider()
//	e := engine.New(p)
//	res, err := e.Render(engine.Request{
//	    Background: data,
//	    Title:      "Five habits",
//	    Body:       "that changed how I work",
//	    Style:      style.Default(),
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("slide.png", res.PNG, 0o644)
package pkg
