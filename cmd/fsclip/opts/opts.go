package opts

import (
	"github.com/walteh/fsclip/pkg/config"
	"github.com/walteh/fsclip/pkg/operation"
)

// RootOpts contains shared options used by all commands. It is filled in
// after flags are parsed, before any command runs. The console logger travels
// in the command context; see log.FromContext.
type RootOpts struct {
	Config   *config.Config
	Operator operation.Operator
}
