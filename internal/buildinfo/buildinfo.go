package buildinfo

import (
	"fmt"
	"runtime"
)

// Ces variables sont injectées à la compilation via -ldflags :
//
//	-X github.com/Guilhem-Bonnet/strmsync-console/internal/buildinfo.Version=v0.3.0
//	-X github.com/Guilhem-Bonnet/strmsync-console/internal/buildinfo.Commit=abcdef
//	-X github.com/Guilhem-Bonnet/strmsync-console/internal/buildinfo.Date=2026-10-01
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	Date      string `json:"date,omitempty" yaml:"date,omitempty"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

func Current() Info {
	return Info{Version: Version, Commit: Commit, Date: Date, GoVersion: runtime.Version()}
}

// UserAgent est envoyé au backend ("strmsync-console/v0.3.0").
func UserAgent(app string) string {
	return fmt.Sprintf("%s/%s", app, Version)
}
