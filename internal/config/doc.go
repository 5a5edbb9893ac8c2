// Package config loads run configuration from the environment.
//
// A .env file in the working directory is loaded first if present, then
// WFM_-prefixed environment variables override the defaults. The resulting
// Config value is passed explicitly into the pipeline; core packages never
// read the environment themselves.
package config
