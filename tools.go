//go:build tools

package main

import (
	_ "github.com/air-verse/air"
	_ "github.com/google/wire/cmd/wire"
	_ "go.uber.org/mock/mockgen"
)
