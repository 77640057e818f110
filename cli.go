//go:build cli
// +build cli

package main

import (
	_ "fbadash/custom"

	"fbadash/cmd"
	"fbadash/config"
)

func main() {
	config.LoadEnv()
	config.InitLogFromEnv()
	config.InitRedis()
	cmd.Execute()
}
