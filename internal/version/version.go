// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version carries the build information injected via ldflags.
package version

import "fmt"

// Info identifies a build of the catalog server.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"commit"`
	BuildTime string `json:"builtAt"`
}

// Dev is reported when no ldflags were given.
var Dev = Info{Version: "dev", GitCommit: "unknown", BuildTime: "unknown"}

// OrDev returns i, or Dev when the version is empty.
func (i Info) OrDev() Info {
	if i.Version == "" {
		return Dev
	}
	return i
}

func (i Info) String() string {
	i = i.OrDev()
	return fmt.Sprintf("eventfx %s (commit: %s, built: %s)", i.Version, i.GitCommit, i.BuildTime)
}
