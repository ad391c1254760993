// Package manifest implements the three structurally equivalent manifest
// projections pinned by spec §6: XML, JSON, and the CRCH binary format.
package manifest

// Image is one packed bitmap's manifest entry.
type Image struct {
	FrameIndex    int
	Name          string
	Label         string
	LoopDirection int
	Duration      int
	X, Y          int
	Width, Height int

	// Only emitted when the document is Trim.
	FrameX, FrameY, FrameW, FrameH int

	// Only emitted when the document is Rotate.
	Rotated bool

	PaletteSlot int
}

// Page is one atlas page's manifest entry.
type Page struct {
	Name          string
	Width, Height int
	Format        int
	Images        []Image
}

// Document is a whole manifest: one or more pages plus the two flags that
// govern which optional fields every Image carries.
type Document struct {
	Trim   bool
	Rotate bool
	Pages  []Page
}
