package exec

import (
	"strconv"

	"github.com/gobuffalo/envy"
	"github.com/pkg/errors"
)

// Defaults for the command line flags, read from the environment or a .env
// file in the working directory.
const (
	EnvJobs     = "CGREP_JOBS"
	EnvLogLevel = "CGREP_LOG_LEVEL"
)

type config struct {
	Jobs     int
	LogLevel string
}

func loadConfig() (config, error) {
	jobs, err := strconv.Atoi(envy.Get(EnvJobs, "1"))
	if err != nil {
		return config{}, errors.Wrapf(err, "%s", EnvJobs)
	}
	return config{
		Jobs:     jobs,
		LogLevel: envy.Get(EnvLogLevel, "warning"),
	}, nil
}
