package render

import "fmt"

// BrightStarsName is the file name of the bright star list.
const BrightStarsName = "bright-stars.bin"

// StripName returns the face strip file name for a face resolution.
func StripName(res int) string { return fmt.Sprintf("cubemap-%04dx%04d.png", res, res) }

// NetName returns the cube net file name for a face resolution.
func NetName(res int) string { return fmt.Sprintf("net-%04dx%04d.png", res, res) }

// KTX2Name returns the HDR container file name for a face resolution.
func KTX2Name(res int) string { return fmt.Sprintf("hdr-cubemap-%04dx%04d.ktx2", res, res) }
