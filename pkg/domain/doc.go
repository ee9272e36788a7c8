/*
Package domain contains the core domain models of the landsketch sketch encoder.

It defines the closed set of semantic brushes, the geometry shared by the
coordinate mapper and the painting engine, the controller state and the
submission result. This package is kept pure and free of external dependencies
like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - BrushKind: One of the semantic paint categories (Sky, Water, Trees...).
  - RGB: The exact colour a brush paints with; part of the backend wire contract.
  - PointerEvent / Rect: Raw input from the displayed element, in client space.
  - UIState: The serialisable controller state (brush, size, submitting flag).
  - SubmissionResult: What the search backend returned for a sketch.
*/
package domain
