// Package buildinfo holds version information injected at build time:
//
//	go build -ldflags "-X github.com/jdigger/aem-grapher/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/jdigger/aem-grapher/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/jdigger/aem-grapher/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/aemgrapher
package buildinfo

import "fmt"

var (
	// Version is the semantic version (e.g., "v1.2.3").
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// Template returns the --version template for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
