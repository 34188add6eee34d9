/*
Package icoforge turns arbitrary raster images into stylised square icons.

It covers the whole path from a source picture to a favicon: decoding the
common raster formats and icon containers, removing flat backgrounds and
recentring the subject, layering effects such as outlines, glows, shadows
and metallic finishes onto a transparent canvas, slicing sprite sheets into
labelled cells and encoding the result as PNG, JPEG, GIF, BMP or ICO.

The package provides a command line interface. To check the supported flags type:

	$ icoforge --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"log"
		"os"

		"github.com/esimov/icoforge"
	)

	func main() {
		p := icoforge.NewProcessor(64)
		p.Format = icoforge.ICO
		p.Effects.OutlineWidth = 6

		if err := p.Process(os.Stdin, os.Stdout); err != nil {
			log.Fatalf("error rendering icon: %v", err)
		}
	}

Long running editors keep their sources in a Table and let a Scheduler
re-render every binding once the effect settings stop changing.
*/
package icoforge
