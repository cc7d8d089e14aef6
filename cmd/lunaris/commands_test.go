package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeltaPrinter(t *testing.T) {
	var out bytes.Buffer
	p := &deltaPrinter{out: &out}

	p.print("Hel")
	p.print("Hello")
	p.print("Hello")
	p.print("Bye")

	assert.Equal(t, "Hello\nBye", out.String())
}

func TestCommandsRegistered(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Subset(t, names, []string{"bot", "serve", "ask"})
	assert.NotNil(t, askCmd.Flags().Lookup("think"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("env"))
}
