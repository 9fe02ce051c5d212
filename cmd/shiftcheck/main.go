package main

import (
	"fmt"
	"os"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/cli"
)

func main() {
	if err := cli.NewApp().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
