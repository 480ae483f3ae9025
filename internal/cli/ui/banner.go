package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

const bannerArt = `
 _       ______  ____  __    ____  ___    __    __       ___    ____  ____
| |     / / __ \/ __ \/ /   / __ )/   |  / /   / /      /   |  / __ \/  _/
| | /| / / / / / / / / /   / __  / /| | / /   / /      / /| | / /_/ // /
| |/ |/ / /_/ / /_/ / /___/ /_/ / ___ |/ /___/ /___   / ___ |/ ____// /
|__/|__/\____/\____/_____/_____/_/  |_/_____/_____/  /_/  |_/_/   /___/
`

// KeyURL is where users create API keys
const KeyURL = "https://woolball.xyz/Identity/Account/Manage/"

// Banner prints the product banner in orange
func Banner(w io.Writer, noColor bool) {
	orange := color.RGB(255, 165, 0)
	if noColor {
		orange.DisableColor()
	}
	orange.Fprint(w, bannerArt)
}

// KeyHint prints where to obtain an API key
func KeyHint(w io.Writer, noColor bool) {
	link := color.New(color.FgBlue, color.Underline)
	if noColor {
		link.DisableColor()
	}
	fmt.Fprintf(w, "Get your key at: %s\n\n", link.Sprint(KeyURL))
}
