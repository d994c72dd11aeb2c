package workspace

import (
	"errors"
	"fmt"
)

// MissingArtifactError names the artifact a pipeline step needs and the
// path where it was expected, so the operator knows which prior step to
// run.
type MissingArtifactError struct {
	Name string
	Path string
}

func (e *MissingArtifactError) Error() string {
	return fmt.Sprintf("missing required artifact %s (looked at %s)", e.Name, e.Path)
}

func IsMissingArtifact(err error) bool {
	var m *MissingArtifactError
	return errors.As(err, &m)
}
