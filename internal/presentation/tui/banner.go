package tui

import (
	"fmt"
	"io"
	"strings"
)

var bannerLines = []string{
	`  _                 _     _        _       _     `,
	` | | __ _ _ __   __| |___| | _____| |_ ___| |__  `,
	` | |/ _' | '_ \ / _' / __| |/ / _ \ __/ __| '_ \ `,
	` | | (_| | | | | (_| \__ \   <  __/ || (__| | | |`,
	` |_|\__,_|_| |_|\__,_|___/_|\_\___|\__\___|_| |_|`,
}

// Sky to grass, top to bottom.
var bannerColors = []string{"#b3e5fc", "#4aa3d2", "#617361", "#2e8b57", "#7ab460"}

// PrintBanner writes the ASCII banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := profileFor(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, p.String(line).Foreground(p.Color(bannerColors[i])))
	}
	fmt.Fprintf(w, "%s\n\n", p.String(" v"+strings.TrimSpace(version)).Faint())
}
