package opts

import (
	"github.com/walteh/presspatch/pkg/batch"
	"github.com/walteh/presspatch/pkg/config"
	"github.com/walteh/presspatch/pkg/remote"
	"github.com/walteh/presspatch/pkg/status"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Config *config.Config
	Server config.ServerDefinition
	Dialer remote.Dialer
	Runner *batch.Runner
	Policy batch.Policy
	Status *status.Logger
}
