package main

import (
	"os"

	"github.com/liran-funaro/cgrep/exec"
)

func main() {
	os.Exit(exec.Main(os.Args[0], os.Args[1:]...))
}
