// timetracking - Timesheet Summary Tool
//
// timetracking reads a CSV timesheet and prints the time spent on each
// project for each day.
package main

import (
	"os"

	"github.com/ccollicutt/timetracking/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
