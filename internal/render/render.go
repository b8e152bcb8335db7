package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
)

var pages = template.Must(template.New("pages").Parse(layoutTemplate))

type resultsData struct {
	Address string
	Radius  float64
	View    MapView
}

// RenderMap writes a standalone page holding a clustered marker map.
func RenderMap(w io.Writer, view MapView) error {
	if view.Title == "" {
		view.Title = "Stations Vélib"
	}
	return execute(w, "mapPage", normalize(view))
}

// RenderForm writes the address search form.
func RenderForm(w io.Writer) error {
	return execute(w, "formPage", nil)
}

// RenderResults writes the results page for address, with the map inline.
func RenderResults(w io.Writer, address string, radius float64, view MapView) error {
	return execute(w, "resultsPage", resultsData{
		Address: address,
		Radius:  radius,
		View:    normalize(view),
	})
}

// MapHTML renders view to a byte slice, ready for a Store.
func MapHTML(view MapView) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderMap(&buf, view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func normalize(view MapView) MapView {
	if view.Zoom == 0 {
		view.Zoom = DefaultZoom
	}
	if view.Markers == nil {
		view.Markers = []Marker{}
	}
	return view
}

// execute renders into a buffer first so a template failure never leaves a
// half-written page behind.
func execute(w io.Writer, name string, data any) error {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
