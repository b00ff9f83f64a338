package main

import (
	"os"

	"github.com/CHXSER/sqllmcg/cmd"
)

func main() {
	code := cmd.Execute()
	os.Exit(code)
}
