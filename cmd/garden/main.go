// Copyright © 2024 Kamiwaza

package main

import (
	"github.com/kamiwaza-ai/garden-registry/cmd/garden/cmd"
)

func main() {
	cmd.Execute()
}
