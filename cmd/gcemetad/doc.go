// The gcemetad daemon emulates two endpoints of the GCE instance
// metadata service (v1beta1) on a development machine, so programs
// that fetch credentials from the metadata service can run unchanged
// outside the cloud. Values are produced by shelling out to the gcloud
// tool (the command lines are configurable) and reshaping its output.
//
// GET /computemetadata/v1beta1/instance/service-accounts/default/token
// returns {"access_token": "..."} built from the token command's
// trimmed output. GET /computemetadata/v1beta1/project/project-id
// returns the project id as a JSON string, extracted from the config
// command's JSON output. Path matching is case-insensitive and ignores
// the query string; any other path returns 404 with no body. A failing
// or timed-out command returns 500 with the error text as the body.
//
// The listen address comes from the configuration file, or else the
// METADATA_PORT environment variable, or else defaults to port 80.
package main // import "github.com/nicolagi/gcemetad/cmd/gcemetad"
