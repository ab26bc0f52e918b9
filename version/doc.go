// Package version reports the etlkit build. Version and Commit can be set
// at link time:
//
//	go build -ldflags "-X github.com/kbukum/etlkit/version.Version=1.0.0"
//
// Otherwise the commit is read from the embedded VCS build settings.
package version
