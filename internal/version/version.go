package version

import "strings"

// DevelopmentVersion is reported by binaries built without a release tag.
// Config compatibility checks are skipped for it.
const DevelopmentVersion = "main"

// Version of the argo-feed binary. Release builds override it with
// -ldflags "-X github.com/rxtech-lab/argo-feed/internal/version.Version=v0.4.0".
var Version = "v0.3.0"

func GetVersion() string {
	return Version
}

// IsDevelopment reports whether v names an untagged build, with or without a
// leading "v".
func IsDevelopment(v string) bool {
	return strings.TrimPrefix(v, "v") == DevelopmentVersion
}
