package main

import (
	"os"

	"github.com/wso2/customize-validation-api/cmd/customizectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
