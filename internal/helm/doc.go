// Package helm implements the chart package manager on top of the helm
// binary.
//
// Values are handed to helm through a temporary YAML file that is removed
// when the command returns. Failures carry helm's stderr.
package helm
