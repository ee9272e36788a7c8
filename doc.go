/*
Package landsketch paints semantic land-cover sketches and submits them to an
image-search backend that answers with real-world locations looking alike.

A sketch is a fixed-size raster where every pixel carries exactly one palette
colour (Sky, Mountain, Water, Trees, Flowers, Boulders, Path, Grass, Dirt).
Strokes are hard-edged: the backend reads colours as class labels, so the
raster never contains blended values.

# Concept

The Studio is the controller for one painting session. It owns the painting
engine, the submission pipeline and the explicit UI state (active brush and
size, help visibility, current view, in-flight flag). Front ends (CLI, HTTP,
MCP) feed it pointer events and read its state; persistence goes through a
session-scoped key/value store.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/landsketch"
		"github.com/aretw0/landsketch/pkg/domain"
	)

	func main() {
		studio, err := landsketch.New(landsketch.WithEndpoint("http://localhost:8000/api/search"))
		if err != nil {
			log.Fatal(err)
		}
		studio.Mount()

		ctx := context.Background()
		_ = studio.SelectBrush(domain.BrushWater)
		studio.Stroke(ctx, domain.Point{X: 100, Y: 100}, domain.Point{X: 200, Y: 100})

		report := studio.Submit(ctx)
		fmt.Println(report.Outcome)
	}

# Architecture

  - pkg/palette, pkg/viewport, pkg/raster: colour table, pointer mapping, rasterisation.
  - pkg/painter: the Idle/Painting state machine over the raster.
  - pkg/codec, pkg/export: PNG encoding and painting.png export.
  - pkg/submit: the single-flight submission pipeline.
  - pkg/ports and adapters: key/value storage (memory, file, redis), navigation, notification.
  - pkg/session: per-session studios with serialised access.
*/
package landsketch
