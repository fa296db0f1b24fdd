package main

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenAddress(t *testing.T) {
	withEnv := func(value string, fn func()) {
		prev, had := os.LookupEnv("METADATA_PORT")
		if value == "" {
			require.Nil(t, os.Unsetenv("METADATA_PORT"))
		} else {
			require.Nil(t, os.Setenv("METADATA_PORT", value))
		}
		defer func() {
			if had {
				_ = os.Setenv("METADATA_PORT", prev)
			} else {
				_ = os.Unsetenv("METADATA_PORT")
			}
		}()
		fn()
	}
	t.Run("explicit address wins over the environment", func(t *testing.T) {
		withEnv("8080", func() {
			c := &config{Address: "localhost:9999"}
			assert.Equal(t, "localhost:9999", c.listenAddress())
		})
	})
	t.Run("METADATA_PORT selects the port", func(t *testing.T) {
		withEnv("8080", func() {
			c := &config{}
			assert.Equal(t, ":8080", c.listenAddress())
		})
	})
	t.Run("an unparsable port falls back to 80", func(t *testing.T) {
		withEnv("eighty", func() {
			c := &config{}
			assert.Equal(t, ":80", c.listenAddress())
		})
	})
	t.Run("an unset port falls back to 80", func(t *testing.T) {
		withEnv("", func() {
			c := &config{}
			assert.Equal(t, ":80", c.listenAddress())
		})
	})
}

func TestLoadConfig(t *testing.T) {
	t.Run("a missing file yields the defaults", func(t *testing.T) {
		c, err := loadConfig("/no/such/file")
		require.Nil(t, err)
		assert.Equal(t, defaultTokenCommand, c.TokenCommand)
		assert.Equal(t, defaultProjectCommand, c.ProjectCommand)
		assert.Equal(t, 30, c.CommandTimeoutSeconds)
		assert.False(t, c.Debug)
	})
	t.Run("file values override the defaults", func(t *testing.T) {
		f, err := ioutil.TempFile("", "test-gcemetad-config-")
		require.Nil(t, err)
		defer func() {
			_ = os.Remove(f.Name())
		}()
		_, err = f.WriteString(`{
	"address": "localhost:8642",
	"token_command": "echo tok",
	"debug": true
}`)
		require.Nil(t, err)
		require.Nil(t, f.Close())
		c, err := loadConfig(f.Name())
		require.Nil(t, err)
		assert.Equal(t, "localhost:8642", c.Address)
		assert.Equal(t, "echo tok", c.TokenCommand)
		assert.Equal(t, defaultProjectCommand, c.ProjectCommand)
		assert.True(t, c.Debug)
	})
}
