package common

import (
	"fmt"
	"strings"
)

type ConfigError struct {
	Message string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Error in configuration: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf(
		"Error in configuration: %s",
		e.Message)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type ArchiveError struct {
	Path string
	Err  error
}

func (e *ArchiveError) Error() string {
	return fmt.Sprintf("Error building archive %s: %v", e.Path, e.Err)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// RemoteError is any platform failure other than a not-found response.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// CheckFailedError is returned when an existence check could not decide
// between exists and not found.
type CheckFailedError struct {
	Resource string
	Err      error
}

func (e *CheckFailedError) Error() string {
	return fmt.Sprintf("Unknown error checking %s: %v", e.Resource, e.Err)
}

func (e *CheckFailedError) Unwrap() error { return e.Err }

// AliasGuardError stops a run whose freshly published version is already
// bound to an alias of an equal or higher environment.
type AliasGuardError struct {
	Environment Environment
	Version     string
	Conflicts   []string
}

func (e *AliasGuardError) Error() string {
	return fmt.Sprintf("version %s is already aliased as %s, refusing to promote it to %s",
		e.Version, strings.Join(e.Conflicts, ", "), e.Environment)
}

func TrimAndCheckEmptyString(s *string) bool {
	*s = strings.TrimSpace(*s)
	return len(*s) == 0
}
