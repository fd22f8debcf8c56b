// Command bakery serves the bakery API and manages its store.
package main

import "github.com/mesh-intelligence/bakery/internal/cli"

func main() {
	cli.Execute()
}
