// Command pagesearch builds the page indices and searches them from the
// terminal.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/Page-Search-Platform/cmd/pagesearch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
