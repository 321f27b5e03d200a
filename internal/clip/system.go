//go:build darwin || windows || linux

package clip

import "golang.design/x/clipboard"

// readSystem and writeSystem are shared by the platform backends; only change
// detection differs between them.
func readSystem() Contents {
	return Contents{
		Text:  clipboard.Read(clipboard.FmtText),
		Image: clipboard.Read(clipboard.FmtImage),
	}
}

func writeSystem(c Contents) {
	if c.Text != nil {
		clipboard.Write(clipboard.FmtText, c.Text)
	}
	if c.Image != nil {
		clipboard.Write(clipboard.FmtImage, c.Image)
	}
}
