package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"deepscifi.app/feed/tools/linters/enumvalidator"
)

func main() {
	singlechecker.Main(enumvalidator.Analyzer)
}
