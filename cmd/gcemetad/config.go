package main

import (
	"os"
	"strconv"
	"time"

	"github.com/rogpeppe/rjson"
)

// Historical defaults: the tool is gcloud, reached through a shell
// line that sources the SDK's path script from the invoking user's
// home directory. Both command lines can be overridden in the
// configuration file.
const (
	defaultTokenCommand   = `. "$HOME/google-cloud-sdk/path.bash.inc" && gcloud auth print-access-token`
	defaultProjectCommand = `. "$HOME/google-cloud-sdk/path.bash.inc" && gcloud config list --format json`
)

type config struct {
	Address               string `json:"address"`
	TokenCommand          string `json:"token_command"`
	ProjectCommand        string `json:"project_command"`
	CommandTimeoutSeconds int    `json:"command_timeout_seconds"`
	Debug                 bool   `json:"debug"`
}

// loadConfig reads the configuration file if present. A missing file
// is not an error; the daemon runs on defaults and the environment.
func loadConfig(pathname string) (*config, error) {
	c := &config{
		TokenCommand:          defaultTokenCommand,
		ProjectCommand:        defaultProjectCommand,
		CommandTimeoutSeconds: 30,
	}
	f, err := os.Open(pathname)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	if err := rjson.NewDecoder(f).Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// listenAddress resolves the listen address: explicit configuration
// wins, then the METADATA_PORT environment variable, then port 80. A
// value that does not parse as an integer falls back to 80 as well.
func (c *config) listenAddress() string {
	if c.Address != "" {
		return c.Address
	}
	if value := os.Getenv("METADATA_PORT"); value != "" {
		if port, err := strconv.Atoi(value); err == nil {
			return ":" + strconv.Itoa(port)
		}
	}
	return ":80"
}

func (c *config) commandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}
