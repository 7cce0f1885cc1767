// Command tagbox is the thin CLI front end over the tagbox library. It
// carries no business logic of its own beyond flag parsing.
package main

import "github.com/tagbox/tagbox/internal/cli"

func main() {
	cli.Execute()
}
