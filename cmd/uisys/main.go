package main

import (
	"fmt"
	"os"

	"github.com/dosanma1/uisys/internal/cmd"
	"github.com/dosanma1/uisys/internal/diagnose"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := diagnose.NewTranslator().Translate(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}
