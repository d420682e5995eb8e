// Package config defines the settings of the alarm daemon and provides
// helpers to load, validate and save them in YAML format.
//
// Load layers defaults, the YAML file and SCRIPTURE_ALARM_* environment
// variables; Save writes the file back with restricted permissions.
package config
